package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/randutil"
)

const (
	DefaultPenaltyMin = 2 * time.Second
	DefaultPenaltyMax = 4 * time.Second
)

// Reminder enforces the "declare before penalty" rule. When a hand drops to
// one card a timer with a random delay starts for that side.
//
// Human at one card: Declare before expiry makes the machine draw one;
// expiry makes the human draw one. Machine at one card: the human may catch
// it with Declare (the machine draws one); expiry means the machine called
// UNO in time.
type Reminder struct {
	engine   *game.Engine
	clock    quartz.Clock
	rng      *randutil.Locked
	min, max time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	timers  [2]*quartz.Timer
	gen     [2]uint64
	stopped bool
}

// NewReminder creates a reminder and subscribes it to the engine's events
func NewReminder(engine *game.Engine, clock quartz.Clock, rng *randutil.Locked, minDelay, maxDelay time.Duration, logger *log.Logger) *Reminder {
	r := &Reminder{
		engine: engine,
		clock:  clock,
		rng:    rng,
		min:    minDelay,
		max:    maxDelay,
		logger: logger.WithPrefix("reminder"),
	}
	engine.EventBus().Subscribe(r)
	return r
}

func (r *Reminder) OnEvent(event game.GameEvent) {
	switch e := event.(type) {
	case game.OneCardLeftEvent:
		r.arm(e.Side)
	case game.HandChangedEvent:
		if e.Size != 1 {
			r.cancel(e.Side)
		}
	case game.GameOverEvent:
		r.Stop()
	}
}

// Run blocks until ctx is cancelled and then disarms every timer
func (r *Reminder) Run(ctx context.Context) error {
	<-ctx.Done()
	r.Stop()
	r.engine.EventBus().Unsubscribe(r)
	return nil
}

// Stop disarms both timers; later events are ignored
func (r *Reminder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for _, side := range game.Sides {
		r.disarmLocked(side)
	}
}

// Pending reports whether side's timer is running
func (r *Reminder) Pending(side game.Side) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timers[side] != nil
}

func (r *Reminder) arm(side game.Side) {
	// Events from another caller may overtake this one, so the hand can
	// already have grown again.
	if n := r.engine.HandSize(side); n != 1 {
		r.logger.Debug("Stale one-card event ignored", "side", side, "hand", n)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}

	r.disarmLocked(side)
	gen := r.gen[side]
	delay := r.rng.Between(r.min, r.max)
	r.timers[side] = r.clock.AfterFunc(delay, func() {
		r.expire(side, gen)
	}, "reminder", side.String())

	if side == game.Human {
		r.logger.Info("UNO!", "deadline", delay)
	} else {
		r.logger.Debug("Machine at one card", "deadline", delay)
	}
}

func (r *Reminder) cancel(side game.Side) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disarmLocked(side)
}

// disarmLocked stops side's timer and bumps its generation so a callback
// already in flight does nothing.
func (r *Reminder) disarmLocked(side game.Side) {
	if r.timers[side] != nil {
		r.timers[side].Stop()
		r.timers[side] = nil
	}
	r.gen[side]++
}

func (r *Reminder) expire(side game.Side, gen uint64) {
	r.mu.Lock()
	if r.stopped || r.gen[side] != gen {
		r.mu.Unlock()
		return
	}
	r.timers[side] = nil
	r.gen[side]++
	r.mu.Unlock()

	if side == game.Machine {
		r.logger.Info("Machine called UNO in time")
		return
	}
	if n := r.engine.HandSize(game.Human); n != 1 {
		r.logger.Debug("Penalty skipped, hand is no longer at one card", "hand", n)
		return
	}

	_, err := r.engine.Penalize(game.Human, "did not call UNO in time")
	switch {
	case err == nil:
		r.logger.Info("Human missed the UNO call")
	case errors.Is(err, game.ErrDeckEmpty), errors.Is(err, game.ErrIllegalState):
		r.logger.Debug("Penalty not applied", "error", err)
	default:
		r.logger.Warn("Penalty failed", "error", err)
	}
}

// Declare is the human calling UNO. It settles the human's own timer first,
// otherwise it catches a machine sitting at one card. Either way the machine
// draws a card. It returns the side whose timer was settled.
func (r *Reminder) Declare() (game.Side, error) {
	side, ok := r.claim()
	if !ok {
		return game.Human, ErrNothingToDeclare
	}

	if err := r.engine.HaveSungOne(game.Human); err != nil {
		return side, err
	}
	if side == game.Human {
		r.logger.Info("Human called UNO")
	} else {
		r.logger.Info("Human caught the machine at one card")
	}
	return side, nil
}

// claim disarms the timer a declaration settles, human first. A timer whose
// hand no longer holds exactly one card is dropped without settling anything.
func (r *Reminder) claim() (game.Side, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, side := range game.Sides {
		if r.timers[side] == nil {
			continue
		}
		r.disarmLocked(side)
		if n := r.engine.HandSize(side); n != 1 {
			r.logger.Debug("Dropped stale timer", "side", side, "hand", n)
			continue
		}
		return side, true
	}
	return game.Human, false
}
