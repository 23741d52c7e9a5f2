package game

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/deck"
)

// Mutator is the view of the game an Effect may change. It is handed out by
// the Engine while its lock is held, so effects must not call back into the
// Engine's public methods.
type Mutator interface {
	// EatCards draws up to n cards into side's hand and returns how many
	// were actually drawn.
	EatCards(side Side, n int) int
	// SkipTurn sets side's skip flag.
	SkipTurn(side Side)
	Logger() *log.Logger
}

// Effect is a rule triggered by playing a card
type Effect interface {
	Name() string
	CanApply(card deck.Card) bool
	Apply(m Mutator, card deck.Card, actor, opponent Side)
}

// EffectRegistry dispatches a played card to the first registered effect
// that accepts it.
type EffectRegistry struct {
	mu      sync.RWMutex
	effects []Effect
}

// NewEffectRegistry returns an empty registry
func NewEffectRegistry() *EffectRegistry {
	return &EffectRegistry{}
}

// DefaultEffects returns a registry with the standard two-player effects
func DefaultEffects() *EffectRegistry {
	r := NewEffectRegistry()
	r.Register(DrawTwoEffect{})
	r.Register(DrawFourEffect{})
	r.Register(SkipEffect{})
	r.Register(ReverseEffect{})
	r.Register(WildEffect{})
	return r
}

// Register appends an effect. Earlier registrations win ties.
func (r *EffectRegistry) Register(e Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects = append(r.effects, e)
}

// Len returns the number of registered effects
func (r *EffectRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.effects)
}

// Apply runs the first effect whose CanApply accepts card and reports
// whether one matched.
func (r *EffectRegistry) Apply(m Mutator, card deck.Card, actor, opponent Side) bool {
	r.mu.RLock()
	effects := make([]Effect, len(r.effects))
	copy(effects, r.effects)
	r.mu.RUnlock()

	for i, e := range effects {
		if !e.CanApply(card) {
			continue
		}
		for _, other := range effects[i+1:] {
			if other.CanApply(card) {
				m.Logger().Debug("Effect shadowed", "card", card, "applied", e.Name(), "shadowed", other.Name())
			}
		}
		e.Apply(m, card, actor, opponent)
		return true
	}
	return false
}

// DrawTwoEffect makes the opponent draw two cards and lose a turn
type DrawTwoEffect struct{}

func (DrawTwoEffect) Name() string { return "draw_two" }
func (DrawTwoEffect) CanApply(card deck.Card) bool { return card.Value == deck.DrawTwo }
func (DrawTwoEffect) Apply(m Mutator, card deck.Card, actor, opponent Side) {
	n := m.EatCards(opponent, 2)
	m.SkipTurn(opponent)
	m.Logger().Debug("Draw two", "target", opponent, "drawn", n)
}

// DrawFourEffect makes the opponent draw four cards and lose a turn. The
// actor still owes a color choice.
type DrawFourEffect struct{}

func (DrawFourEffect) Name() string { return "draw_four" }
func (DrawFourEffect) CanApply(card deck.Card) bool { return card.Value == deck.DrawFour }
func (DrawFourEffect) Apply(m Mutator, card deck.Card, actor, opponent Side) {
	n := m.EatCards(opponent, 4)
	m.SkipTurn(opponent)
	m.Logger().Debug("Draw four", "target", opponent, "drawn", n)
}

// SkipEffect makes the opponent lose a turn
type SkipEffect struct{}

func (SkipEffect) Name() string { return "skip" }
func (SkipEffect) CanApply(card deck.Card) bool { return card.Value == deck.Skip }
func (SkipEffect) Apply(m Mutator, card deck.Card, actor, opponent Side) {
	m.SkipTurn(opponent)
}

// ReverseEffect behaves like SkipEffect with two players
type ReverseEffect struct{}

func (ReverseEffect) Name() string { return "reverse" }
func (ReverseEffect) CanApply(card deck.Card) bool { return card.Value == deck.Reverse }
func (ReverseEffect) Apply(m Mutator, card deck.Card, actor, opponent Side) {
	m.SkipTurn(opponent)
}

// WildEffect has no effect on state; the color choice is handled by the Engine
type WildEffect struct{}

func (WildEffect) Name() string { return "wild" }
func (WildEffect) CanApply(card deck.Card) bool { return card.Value == deck.Wild }
func (WildEffect) Apply(m Mutator, card deck.Card, actor, opponent Side) {}
