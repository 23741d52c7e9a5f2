package game

import "github.com/lox/unoduel/internal/deck"

// Action is the kind of move a side makes on its turn
type Action int

const (
	ActionPlay Action = iota
	ActionDraw
	ActionPass
)

// String returns the string representation of an action
func (a Action) String() string {
	switch a {
	case ActionPlay:
		return "play"
	case ActionDraw:
		return "draw"
	case ActionPass:
		return "pass"
	default:
		return "unknown"
	}
}

// Decision represents a side's move with reasoning
type Decision struct {
	Action    Action
	Card      deck.Card  // For ActionPlay
	Color     deck.Color // For wild cards
	Reasoning string     // Human-readable explanation
}

// View is a point-in-time copy of the game as seen by one side. It is safe
// to read without holding any lock.
type View struct {
	Side          Side
	Hand          []deck.Card
	Playable      []deck.Card // Cards from Hand that CanPlay accepts, in hand order
	Top           deck.Card
	HasTop        bool
	OpponentCards int
	DeckSize      int
	HumanTurn     bool
	Phase         Phase
	PendingColor  bool // Side owes a color choice for the wild in play
}

// CanDraw reports whether a draw is possible
func (v View) CanDraw() bool {
	return v.DeckSize > 0
}
