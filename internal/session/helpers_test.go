package session

import (
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
)

var (
	red5   = game.CardOf(deck.Five, deck.Red)
	red7   = game.CardOf(deck.Seven, deck.Red)
	red8   = game.CardOf(deck.Eight, deck.Red)
	red9   = game.CardOf(deck.Nine, deck.Red)
	blue4  = game.CardOf(deck.Four, deck.Blue)
	blue9  = game.CardOf(deck.Nine, deck.Blue)
	green3 = game.CardOf(deck.Three, deck.Green)
	skipR  = game.CardOf(deck.Skip, deck.Red)
	plus2  = game.CardOf(deck.DrawTwo, deck.Red)
	wild   = game.CardOf(deck.Wild, deck.NoColor)
)

func totalCards(e *game.Engine) int {
	return e.HandSize(game.Human) + e.HandSize(game.Machine) + e.DeckSize() + len(e.Discard())
}
