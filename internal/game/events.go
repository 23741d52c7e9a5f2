package game

import (
	"sync"
	"time"

	"github.com/lox/unoduel/internal/deck"
)

// GameEvent represents any event that occurs during a game
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// HandChangedEvent is published whenever a hand grows or shrinks
type HandChangedEvent struct {
	Side      Side
	Size      int
	timestamp time.Time
}

func (e HandChangedEvent) EventType() EventType { return EventTypeHandChanged }
func (e HandChangedEvent) Timestamp() time.Time { return e.timestamp }

// NewHandChangedEvent creates a new hand changed event
func NewHandChangedEvent(side Side, size int) HandChangedEvent {
	return HandChangedEvent{Side: side, Size: size, timestamp: time.Now()}
}

// CardPlayedEvent is published when a card lands on the table
type CardPlayedEvent struct {
	Side      Side
	Card      deck.Card
	timestamp time.Time
}

func (e CardPlayedEvent) EventType() EventType { return EventTypeCardPlayed }
func (e CardPlayedEvent) Timestamp() time.Time { return e.timestamp }

// NewCardPlayedEvent creates a new card played event
func NewCardPlayedEvent(side Side, card deck.Card) CardPlayedEvent {
	return CardPlayedEvent{Side: side, Card: card, timestamp: time.Now()}
}

// CardDrawnEvent is published for every card taken from the deck
type CardDrawnEvent struct {
	Side      Side
	Card      deck.Card
	DeckLeft  int
	timestamp time.Time
}

func (e CardDrawnEvent) EventType() EventType { return EventTypeCardDrawn }
func (e CardDrawnEvent) Timestamp() time.Time { return e.timestamp }

// NewCardDrawnEvent creates a new card drawn event
func NewCardDrawnEvent(side Side, card deck.Card, deckLeft int) CardDrawnEvent {
	return CardDrawnEvent{Side: side, Card: card, DeckLeft: deckLeft, timestamp: time.Now()}
}

// ColorChosenEvent is published when a wild in play gets its color
type ColorChosenEvent struct {
	Side      Side
	Color     deck.Color
	timestamp time.Time
}

func (e ColorChosenEvent) EventType() EventType { return EventTypeColorChosen }
func (e ColorChosenEvent) Timestamp() time.Time { return e.timestamp }

// NewColorChosenEvent creates a new color chosen event
func NewColorChosenEvent(side Side, color deck.Color) ColorChosenEvent {
	return ColorChosenEvent{Side: side, Color: color, timestamp: time.Now()}
}

// TurnChangedEvent is published when the turn flag flips
type TurnChangedEvent struct {
	HumanTurn bool
	timestamp time.Time
}

func (e TurnChangedEvent) EventType() EventType { return EventTypeTurnChanged }
func (e TurnChangedEvent) Timestamp() time.Time { return e.timestamp }

// NewTurnChangedEvent creates a new turn changed event
func NewTurnChangedEvent(humanTurn bool) TurnChangedEvent {
	return TurnChangedEvent{HumanTurn: humanTurn, timestamp: time.Now()}
}

// SkipEvent is published when a side is told to lose its next turn
type SkipEvent struct {
	Side      Side
	timestamp time.Time
}

func (e SkipEvent) EventType() EventType { return EventTypeSkip }
func (e SkipEvent) Timestamp() time.Time { return e.timestamp }

// NewSkipEvent creates a new skip event
func NewSkipEvent(side Side) SkipEvent {
	return SkipEvent{Side: side, timestamp: time.Now()}
}

// OneCardLeftEvent is published when a hand shrinks or grows to exactly one card
type OneCardLeftEvent struct {
	Side      Side
	timestamp time.Time
}

func (e OneCardLeftEvent) EventType() EventType { return EventTypeOneCardLeft }
func (e OneCardLeftEvent) Timestamp() time.Time { return e.timestamp }

// NewOneCardLeftEvent creates a new one card left event
func NewOneCardLeftEvent(side Side) OneCardLeftEvent {
	return OneCardLeftEvent{Side: side, timestamp: time.Now()}
}

// PenaltyEvent is published when a side draws as a penalty
type PenaltyEvent struct {
	Side      Side
	Cards     int
	Reason    string
	timestamp time.Time
}

func (e PenaltyEvent) EventType() EventType { return EventTypePenalty }
func (e PenaltyEvent) Timestamp() time.Time { return e.timestamp }

// NewPenaltyEvent creates a new penalty event
func NewPenaltyEvent(side Side, cards int, reason string) PenaltyEvent {
	return PenaltyEvent{Side: side, Cards: cards, Reason: reason, timestamp: time.Now()}
}

// GameOverEvent is published exactly once per game
type GameOverEvent struct {
	Result    Result
	timestamp time.Time
}

func (e GameOverEvent) EventType() EventType { return EventTypeGameOver }
func (e GameOverEvent) Timestamp() time.Time { return e.timestamp }

// NewGameOverEvent creates a new game over event
func NewGameOverEvent(result Result) GameOverEvent {
	return GameOverEvent{Result: result, timestamp: time.Now()}
}

// EventSubscriber can subscribe to game events. OnEvent may be called from
// any goroutine and must not block.
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is an in-memory event bus safe for concurrent use
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers in subscription order
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := make([]EventSubscriber, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, subscriber := range subs {
		subscriber.OnEvent(event)
	}
}
