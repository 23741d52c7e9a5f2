package game

import "github.com/lox/unoduel/internal/deck"

// Side identifies one of the two players
type Side int

const (
	Human Side = iota
	Machine
)

// Sides lists both sides in dealing order
var Sides = []Side{Human, Machine}

// String returns the lower-case name of a side
func (s Side) String() string {
	switch s {
	case Human:
		return "human"
	case Machine:
		return "machine"
	default:
		return "unknown"
	}
}

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == Human {
		return Machine
	}
	return Human
}

// ParseSide is the inverse of Side.String
func ParseSide(s string) (Side, bool) {
	switch s {
	case "human":
		return Human, true
	case "machine":
		return Machine, true
	default:
		return Human, false
	}
}

// Player holds a hand of cards. Hands are only mutated by the Engine.
type Player struct {
	Side Side
	Name string
	hand []deck.Card
}

func newPlayer(side Side, name string) *Player {
	return &Player{Side: side, Name: name}
}

// Cards returns a copy of the hand
func (p *Player) Cards() []deck.Card {
	c := make([]deck.Card, len(p.hand))
	copy(c, p.hand)
	return c
}

// Len returns the number of cards held
func (p *Player) Len() int {
	return len(p.hand)
}

func (p *Player) add(card deck.Card) {
	p.hand = append(p.hand, card)
}

// find returns the index of the card with the same identity, or -1
func (p *Player) find(card deck.Card) int {
	for i, c := range p.hand {
		if c.Same(card) {
			return i
		}
	}
	return -1
}

func (p *Player) removeAt(i int) deck.Card {
	card := p.hand[i]
	p.hand = append(p.hand[:i], p.hand[i+1:]...)
	return card
}
