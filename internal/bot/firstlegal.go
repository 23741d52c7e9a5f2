package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/game"
)

// FirstLegal plays the first playable card in hand order, choosing a
// uniformly random color for wilds, and draws otherwise.
type FirstLegal struct {
	rng    Intn
	logger *log.Logger
}

// NewFirstLegal creates a new FirstLegal instance
func NewFirstLegal(rng Intn, logger *log.Logger) *FirstLegal {
	return &FirstLegal{rng: rng, logger: logger.WithPrefix("bot")}
}

func (f *FirstLegal) MakeDecision(view game.View) game.Decision {
	if len(view.Playable) == 0 {
		return noPlay(view, "first-legal")
	}
	d := play(view.Playable[0], f.rng, "first-legal first playable card")
	f.logger.Debug("Decision", "side", view.Side, "card", d.Card, "color", d.Color, "top", view.Top)
	return d
}
