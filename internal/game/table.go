package game

import "github.com/lox/unoduel/internal/deck"

// Table is the discard pile. The last card is the one in play.
type Table struct {
	cards []deck.Card
}

func newTable() *Table {
	return &Table{}
}

// Top returns the card in play
func (t *Table) Top() (deck.Card, bool) {
	if len(t.cards) == 0 {
		return deck.Card{}, false
	}
	return t.cards[len(t.cards)-1], true
}

// History returns a copy of every card on the table, oldest first
func (t *Table) History() []deck.Card {
	c := make([]deck.Card, len(t.cards))
	copy(c, t.cards)
	return c
}

// Len returns the number of cards on the table
func (t *Table) Len() int {
	return len(t.cards)
}

func (t *Table) place(card deck.Card) {
	t.cards = append(t.cards, card)
}

// setTopColor resolves the color of a wild in play. It is the only place a
// card's color changes after construction.
func (t *Table) setTopColor(color deck.Color) bool {
	if len(t.cards) == 0 || !t.cards[len(t.cards)-1].IsWild() {
		return false
	}
	t.cards[len(t.cards)-1].Color = color
	return true
}
