package game

import (
	"errors"

	"github.com/lox/unoduel/internal/deck"
)

var (
	// ErrDeckEmpty is returned when a draw is requested from an empty deck.
	ErrDeckEmpty = deck.ErrDeckEmpty
	// ErrInvalidPlay is returned when a card cannot legally be played.
	ErrInvalidPlay = errors.New("invalid play")
	// ErrIllegalState is returned when an operation is attempted in the wrong phase.
	ErrIllegalState = errors.New("illegal game state")
	// ErrInvalidSnapshot is returned by Restore for snapshots that do not
	// describe a complete deck.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
