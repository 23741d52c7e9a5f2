package session

import "errors"

var (
	// ErrNotYourTurn is returned for a human move while the machine is acting
	ErrNotYourTurn = errors.New("not your turn")
	// ErrNothingToDeclare is returned when UNO is called with no one at one card
	ErrNothingToDeclare = errors.New("nothing to declare")
	// ErrColorRequired is returned when a wild is played without a color
	ErrColorRequired = errors.New("a color is required for wild cards")
	// ErrCannotPass is returned when the human could still draw or play
	ErrCannotPass = errors.New("cannot pass while a draw or play is possible")
)
