// Package bot holds the machine's decision strategies.
package bot

import (
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
)

// Strategy picks a move from an immutable view of the game. It must not
// mutate anything; the caller applies the decision through the engine.
type Strategy interface {
	MakeDecision(view game.View) game.Decision
}

// Intn is the randomness a strategy needs
type Intn interface {
	IntN(n int) int
}

func randomColor(rng Intn) deck.Color {
	return deck.Colors[rng.IntN(len(deck.Colors))]
}

func play(card deck.Card, rng Intn, reasoning string) game.Decision {
	d := game.Decision{Action: game.ActionPlay, Card: card, Reasoning: reasoning}
	if card.IsWild() {
		d.Color = randomColor(rng)
	}
	return d
}

func noPlay(view game.View, name string) game.Decision {
	if view.CanDraw() {
		return game.Decision{Action: game.ActionDraw, Reasoning: name + " has nothing to play"}
	}
	return game.Decision{Action: game.ActionPass, Reasoning: name + " has nothing to play and the deck is empty"}
}
