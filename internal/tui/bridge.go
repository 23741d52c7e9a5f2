package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/game"
)

// EventMsg carries an engine event onto the bubbletea loop
type EventMsg struct {
	Event game.GameEvent
}

// Sender is the part of *tea.Program the bridge needs
type Sender interface {
	Send(msg tea.Msg)
}

const bridgeBuffer = 256

// Bridge subscribes to the engine and forwards events to the program. Events
// are buffered so publishers never wait on the UI.
type Bridge struct {
	sender Sender
	events chan game.GameEvent
	logger *log.Logger
}

// NewBridge creates a bridge; call Run to start forwarding
func NewBridge(sender Sender, logger *log.Logger) *Bridge {
	return &Bridge{
		sender: sender,
		events: make(chan game.GameEvent, bridgeBuffer),
		logger: logger.WithPrefix("bridge"),
	}
}

// OnEvent implements game.EventSubscriber
func (b *Bridge) OnEvent(event game.GameEvent) {
	select {
	case b.events <- event:
	default:
		b.logger.Warn("UI event buffer full, dropping event", "type", event.EventType())
	}
}

// Run forwards events in order until ctx is cancelled
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-b.events:
			b.sender.Send(EventMsg{Event: event})
		}
	}
}
