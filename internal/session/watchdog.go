package session

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/unoduel/internal/game"
)

// DefaultWatchdogInterval is how often the watchdog polls when no hand
// change wakes it earlier.
const DefaultWatchdogInterval = 500 * time.Millisecond

// Watchdog detects the end of the game. It polls on a fixed interval and is
// also woken by hand changes.
type Watchdog struct {
	engine   *game.Engine
	clock    quartz.Clock
	interval time.Duration
	logger   *log.Logger
	wake     *notifier
}

// NewWatchdog creates a watchdog and subscribes it to the engine's events
func NewWatchdog(engine *game.Engine, clock quartz.Clock, interval time.Duration, logger *log.Logger) *Watchdog {
	if interval <= 0 {
		interval = DefaultWatchdogInterval
	}
	w := &Watchdog{
		engine:   engine,
		clock:    clock,
		interval: interval,
		logger:   logger.WithPrefix("watchdog"),
		wake:     newNotifier(game.EventTypeHandChanged, game.EventTypeGameOver),
	}
	engine.EventBus().Subscribe(w.wake)
	return w
}

// Run returns once the game is over or ctx is cancelled
func (w *Watchdog) Run(ctx context.Context) error {
	defer w.engine.EventBus().Unsubscribe(w.wake)

	ticker := w.clock.NewTicker(w.interval, "watchdog")
	defer ticker.Stop()

	for {
		if winner, ok := w.engine.CheckWinner(); ok {
			w.logger.Info("Winner detected", "winner", winner)
			return nil
		}
		if w.engine.GameOver() {
			w.logger.Info("Game over", "reason", w.engine.Result().Reason)
			return nil
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-w.wake.C():
		}
	}
}
