package session

import "github.com/lox/unoduel/internal/game"

// notifier turns selected engine events into a coalescing wake-up signal.
// OnEvent never blocks.
type notifier struct {
	ch    chan struct{}
	types map[game.EventType]bool
}

func newNotifier(types ...game.EventType) *notifier {
	n := &notifier{
		ch:    make(chan struct{}, 1),
		types: make(map[game.EventType]bool, len(types)),
	}
	for _, t := range types {
		n.types[t] = true
	}
	return n
}

func (n *notifier) OnEvent(event game.GameEvent) {
	if !n.types[event.EventType()] {
		return
	}
	n.poke()
}

func (n *notifier) poke() {
	select {
	case n.ch <- struct{}{}:
	default:
	}
}

func (n *notifier) C() <-chan struct{} {
	return n.ch
}
