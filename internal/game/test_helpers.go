package game

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/randutil"
)

// TestEngineOption configures test engine creation
type TestEngineOption func(*testEngineBuilder)

type testEngineBuilder struct {
	seed     int64
	eventBus EventBus
	logger   *log.Logger
	human    []deck.Card
	machine  []deck.Card
	top      *deck.Card
	deck     []deck.Card
	deckSet  bool
	scenario bool
}

// Test engine options
func WithSeed(seed int64) TestEngineOption {
	return func(b *testEngineBuilder) { b.seed = seed }
}

func WithTestEventBus(eventBus EventBus) TestEngineOption {
	return func(b *testEngineBuilder) { b.eventBus = eventBus }
}

func WithTestLogger(logger *log.Logger) TestEngineOption {
	return func(b *testEngineBuilder) { b.logger = logger }
}

// WithHands fixes both hands and switches the builder to a scenario game
func WithHands(human, machine []deck.Card) TestEngineOption {
	return func(b *testEngineBuilder) {
		b.human = human
		b.machine = machine
		b.scenario = true
	}
}

func WithTop(card deck.Card) TestEngineOption {
	return func(b *testEngineBuilder) {
		b.top = &card
		b.scenario = true
	}
}

// WithDeckCards fixes the draw pile, top last. Cards not placed anywhere
// else are buried in the discard pile below the top card.
func WithDeckCards(cards ...deck.Card) TestEngineOption {
	return func(b *testEngineBuilder) {
		b.deck = cards
		b.deckSet = true
		b.scenario = true
	}
}

// QuietLogger returns a logger that only prints errors, to nowhere
func QuietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// CardOf returns the card of a fresh deck with the given value and color.
// Wilds ignore color.
func CardOf(value deck.Value, color deck.Color) deck.Card {
	for _, c := range deck.Composition() {
		if c.Value != value {
			continue
		}
		if c.IsWild() || c.Color == color {
			return c
		}
	}
	panic("no such card: " + value.String() + " " + color.String())
}

// NewTestEngine creates a started game. Without scenario options it deals a
// seeded shuffle; with them it builds the exact position requested, human
// to move, with all 54 cards accounted for.
func NewTestEngine(opts ...TestEngineOption) *Engine {
	b := &testEngineBuilder{
		seed:     42,
		eventBus: NewEventBus(),
		logger:   QuietLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if !b.scenario {
		e := NewEngine(randutil.New(b.seed), b.logger, WithEventBus(b.eventBus))
		if err := e.StartGame(); err != nil {
			panic(err)
		}
		return e
	}

	used := make(map[int]bool)
	for _, group := range [][]deck.Card{b.human, b.machine, b.deck} {
		for _, c := range group {
			used[c.ID] = true
		}
	}
	if b.top != nil {
		used[b.top.ID] = true
	}

	var remaining []deck.Card
	for _, c := range deck.Composition() {
		if !used[c.ID] {
			remaining = append(remaining, c)
		}
	}

	if b.top == nil {
		for i, c := range remaining {
			if !c.IsSpecial() {
				top := c
				b.top = &top
				remaining = append(remaining[:i:i], remaining[i+1:]...)
				break
			}
		}
	}

	var draw, buried []deck.Card
	if b.deckSet {
		draw = b.deck
		buried = remaining
	} else {
		draw = remaining
		rng := randutil.New(b.seed)
		rng.Shuffle(len(draw), func(i, j int) { draw[i], draw[j] = draw[j], draw[i] })
	}

	e := NewEngine(nil, b.logger, WithEventBus(b.eventBus), WithDeck(deck.FromCards(draw)))
	e.players[Human].hand = append([]deck.Card(nil), b.human...)
	e.players[Machine].hand = append([]deck.Card(nil), b.machine...)
	e.table.cards = append(buried, *b.top)
	e.phase = PhaseInProgress
	e.humanTurn = true
	return e
}
