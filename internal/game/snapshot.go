package game

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/deck"
)

// SnapshotCard is the persisted form of a card. Identity comes from ID; the
// color is only read back for wilds.
type SnapshotCard struct {
	ID      int    `json:"id"`
	Value   string `json:"value"`
	Color   string `json:"color"`
	Artwork string `json:"artwork"`
}

// SnapshotState holds the engine flags
type SnapshotState struct {
	Phase       string `json:"phase"`
	GameOver    bool   `json:"game_over"`
	HumanTurn   bool   `json:"human_turn"`
	SkipHuman   bool   `json:"skip_human"`
	SkipMachine bool   `json:"skip_machine"`
	Winner      string `json:"winner,omitempty"`
	EndReason   string `json:"end_reason,omitempty"`
}

// Snapshot is a complete, JSON-serialisable copy of a game
type Snapshot struct {
	GameID       string         `json:"game_id"`
	SavedAt      time.Time      `json:"saved_at"`
	PlayerName   string         `json:"player_name"`
	Deck         []SnapshotCard `json:"deck"`
	Discard      []SnapshotCard `json:"discard"`
	Human        []SnapshotCard `json:"human"`
	Machine      []SnapshotCard `json:"machine"`
	State        SnapshotState  `json:"state"`
	PendingColor string         `json:"pending_color,omitempty"`
}

// Snapshot copies the whole game
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.unlock()

	s := Snapshot{
		GameID:     e.id,
		SavedAt:    time.Now().UTC(),
		PlayerName: e.players[Human].Name,
		Deck:       toSnapshotCards(e.deck.Cards()),
		Discard:    toSnapshotCards(e.table.History()),
		Human:      toSnapshotCards(e.players[Human].hand),
		Machine:    toSnapshotCards(e.players[Machine].hand),
		State: SnapshotState{
			Phase:       e.phase.String(),
			GameOver:    e.phase == PhaseGameOver,
			HumanTurn:   e.humanTurn,
			SkipHuman:   e.skip[Human],
			SkipMachine: e.skip[Machine],
		},
	}
	if e.phase == PhaseGameOver {
		s.State.EndReason = e.result.Reason.String()
		if e.result.HasWinner() {
			s.State.Winner = e.result.Winner.String()
		}
	}
	if e.pendingColor {
		s.PendingColor = e.pendingSide.String()
	}
	return s
}

func toSnapshotCards(cards []deck.Card) []SnapshotCard {
	out := make([]SnapshotCard, len(cards))
	for i, c := range cards {
		out[i] = SnapshotCard{
			ID:      c.ID,
			Value:   c.Value.String(),
			Color:   c.Color.String(),
			Artwork: c.Artwork,
		}
	}
	return out
}

// Restore rebuilds an Engine from a snapshot. The snapshot must account for
// every card of a fresh deck exactly once.
func Restore(s Snapshot, logger *log.Logger, opts ...Option) (*Engine, error) {
	composition := deck.Composition()
	seen := make(map[int]bool, deck.Size)

	convert := func(where string, in []SnapshotCard) ([]deck.Card, error) {
		out := make([]deck.Card, 0, len(in))
		for _, sc := range in {
			if sc.ID < 0 || sc.ID >= len(composition) {
				return nil, fmt.Errorf("%w: %s has unknown card id %d", ErrInvalidSnapshot, where, sc.ID)
			}
			if seen[sc.ID] {
				return nil, fmt.Errorf("%w: card id %d appears twice", ErrInvalidSnapshot, sc.ID)
			}
			seen[sc.ID] = true
			card := composition[sc.ID]
			if card.IsWild() && sc.Color != deck.NoColor.String() {
				color, err := deck.ParseColor(sc.Color)
				if err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSnapshot, where, err)
				}
				card.Color = color
			}
			out = append(out, card)
		}
		return out, nil
	}

	deckCards, err := convert("deck", s.Deck)
	if err != nil {
		return nil, err
	}
	discard, err := convert("discard", s.Discard)
	if err != nil {
		return nil, err
	}
	human, err := convert("human hand", s.Human)
	if err != nil {
		return nil, err
	}
	machine, err := convert("machine hand", s.Machine)
	if err != nil {
		return nil, err
	}
	if len(seen) != deck.Size {
		return nil, fmt.Errorf("%w: %d cards, want %d", ErrInvalidSnapshot, len(seen), deck.Size)
	}

	cfg := engineConfig{
		humanName:   s.PlayerName,
		machineName: DefaultMachineName,
		gameID:      s.GameID,
	}
	if cfg.humanName == "" {
		cfg.humanName = DefaultHumanName
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.deck = deck.FromCards(deckCards)
	if s.GameID != "" {
		cfg.gameID = s.GameID
	}

	e := newEngine(cfg, logger)
	e.table.cards = discard
	e.players[Human].hand = human
	e.players[Machine].hand = machine
	e.humanTurn = s.State.HumanTurn
	e.skip[Human] = s.State.SkipHuman
	e.skip[Machine] = s.State.SkipMachine

	switch {
	case s.State.GameOver:
		e.phase = PhaseGameOver
		e.result = Result{Reason: EndDeckExhausted}
		if winner, ok := ParseSide(s.State.Winner); ok {
			e.result = Result{Winner: winner, Reason: EndEmptyHand}
		}
	case len(discard) > 0:
		e.phase = PhaseInProgress
	default:
		e.phase = PhaseNotStarted
	}

	if side, ok := ParseSide(s.PendingColor); ok && e.phase == PhaseInProgress {
		e.pendingColor = true
		e.pendingSide = side
	}

	e.logger.Info("Game restored", "phase", e.phase, "deck", e.deck.Len(), "human", len(human), "machine", len(machine))
	return e, nil
}
