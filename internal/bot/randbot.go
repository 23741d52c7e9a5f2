package bot

import (
	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/game"
)

// RandBot is a simple bot that plays a uniformly random playable card
type RandBot struct {
	rng    Intn
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng Intn, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger.WithPrefix("bot")}
}

func (r *RandBot) MakeDecision(view game.View) game.Decision {
	if len(view.Playable) == 0 {
		return noPlay(view, "rand-bot")
	}
	card := view.Playable[r.rng.IntN(len(view.Playable))]
	return play(card, r.rng, "rand-bot random playable card")
}

// ByName returns the strategy registered under name
func ByName(name string, rng Intn, logger *log.Logger) (Strategy, bool) {
	switch name {
	case "first", "first-legal":
		return NewFirstLegal(rng, logger), true
	case "random", "rand":
		return NewRandBot(rng, logger), true
	default:
		return nil, false
	}
}
