package feed

import (
	"time"

	"github.com/lox/unoduel/internal/game"
)

// Message is one event as sent to spectators
type Message struct {
	Type      game.EventType `json:"type"`
	GameID    string         `json:"gameId,omitempty"`
	Text      string         `json:"text,omitempty"`
	Side      string         `json:"side,omitempty"`
	HandSize  *int           `json:"handSize,omitempty"`
	HumanTurn *bool          `json:"humanTurn,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewMessage converts an engine event. Cards the machine draws stay hidden.
func NewMessage(gameID string, event game.GameEvent, formatter *game.EventFormatter) *Message {
	msg := &Message{
		Type:      event.EventType(),
		GameID:    gameID,
		Text:      formatter.Format(event),
		Timestamp: event.Timestamp(),
	}

	switch e := event.(type) {
	case game.HandChangedEvent:
		size := e.Size
		msg.Side = e.Side.String()
		msg.HandSize = &size
	case game.TurnChangedEvent:
		turn := e.HumanTurn
		msg.HumanTurn = &turn
	case game.CardPlayedEvent:
		msg.Side = e.Side.String()
	case game.CardDrawnEvent:
		msg.Side = e.Side.String()
	case game.ColorChosenEvent:
		msg.Side = e.Side.String()
	case game.SkipEvent:
		msg.Side = e.Side.String()
	case game.OneCardLeftEvent:
		msg.Side = e.Side.String()
	case game.PenaltyEvent:
		msg.Side = e.Side.String()
	case game.GameOverEvent:
		if e.Result.HasWinner() {
			msg.Side = e.Result.Winner.String()
		}
	}
	return msg
}
