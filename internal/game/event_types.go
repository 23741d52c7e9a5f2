package game

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeHandChanged EventType = "hand_changed"
	EventTypeCardPlayed  EventType = "card_played"
	EventTypeCardDrawn   EventType = "card_drawn"
	EventTypeColorChosen EventType = "color_chosen"
	EventTypeTurnChanged EventType = "turn_changed"
	EventTypeSkip        EventType = "skip"
	EventTypeOneCardLeft EventType = "one_card_left"
	EventTypePenalty     EventType = "penalty"
	EventTypeGameOver    EventType = "game_over"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}
