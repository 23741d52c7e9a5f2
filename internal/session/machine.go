package session

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/unoduel/internal/bot"
	"github.com/lox/unoduel/internal/game"
)

// MachineWorker plays the machine's turns. It sleeps until Signal is called
// after a human move, then acts through the engine like any other caller.
type MachineWorker struct {
	engine   *game.Engine
	strategy bot.Strategy
	clock    quartz.Clock
	think    time.Duration
	logger   *log.Logger
	gate     chan struct{}
}

// NewMachineWorker creates a worker. A think delay of zero acts immediately.
func NewMachineWorker(engine *game.Engine, strategy bot.Strategy, clock quartz.Clock, think time.Duration, logger *log.Logger) *MachineWorker {
	return &MachineWorker{
		engine:   engine,
		strategy: strategy,
		clock:    clock,
		think:    think,
		logger:   logger.WithPrefix("machine"),
		gate:     make(chan struct{}, 1),
	}
}

// Signal hands the turn to the machine. Signals coalesce.
func (m *MachineWorker) Signal() {
	select {
	case m.gate <- struct{}{}:
	default:
	}
}

// Run waits for signals and takes turns until the game ends or ctx is
// cancelled.
func (m *MachineWorker) Run(ctx context.Context) error {
	m.logger.Debug("Machine worker started")
	defer m.logger.Debug("Machine worker stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.gate:
		}
		if stop := m.TakeTurn(ctx); stop {
			return nil
		}
	}
}

// TakeTurn plays one machine turn, including the extra moves earned by
// skipping the human, and returns the turn to the human. It reports whether
// the worker should stop.
func (m *MachineWorker) TakeTurn(ctx context.Context) bool {
	if m.finished() {
		return true
	}
	if m.engine.ConsumeSkip(game.Machine) {
		m.logger.Info("Machine turn skipped")
		m.engine.SetHumanTurn(true)
		return false
	}

	for {
		if !m.sleep(ctx) {
			return true
		}
		if m.finished() {
			return true
		}
		if err := m.act(); errors.Is(err, game.ErrIllegalState) {
			m.logger.Debug("Machine stopped acting", "error", err)
			return true
		}
		if m.finished() {
			return true
		}
		if !m.engine.ConsumeSkip(game.Human) {
			break
		}
		m.logger.Debug("Human skipped, machine keeps the turn")
	}

	m.engine.SetHumanTurn(true)
	return false
}

func (m *MachineWorker) finished() bool {
	if m.engine.GameOver() {
		return true
	}
	_, won := m.engine.CheckWinner()
	return won
}

// sleep waits for the think delay and reports false if ctx ended first
func (m *MachineWorker) sleep(ctx context.Context) bool {
	if m.think <= 0 {
		return ctx.Err() == nil
	}

	done := make(chan struct{})
	timer := m.clock.AfterFunc(m.think, func() {
		close(done)
	}, "machine", "think")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-done:
		return true
	}
}

func (m *MachineWorker) act() error {
	view := m.engine.View(game.Machine)
	decision := m.strategy.MakeDecision(view)

	switch decision.Action {
	case game.ActionPlay:
		err := m.engine.PlayCardWithColor(decision.Card, decision.Color)
		if err == nil {
			m.logger.Info("Machine played", "card", decision.Card, "color", decision.Color, "left", m.engine.HandSize(game.Machine))
			return nil
		}
		if errors.Is(err, game.ErrInvalidPlay) {
			m.logger.Error("Strategy chose an illegal card, drawing instead", "card", decision.Card, "error", err)
			return m.draw()
		}
		return err
	case game.ActionDraw:
		return m.draw()
	default:
		m.logger.Info("Machine passes", "reason", decision.Reasoning)
		return nil
	}
}

func (m *MachineWorker) draw() error {
	card, err := m.engine.DrawCard(game.Machine)
	switch {
	case err == nil:
		m.logger.Debug("Machine drew", "card", card)
		return nil
	case errors.Is(err, game.ErrDeckEmpty):
		m.logger.Warn("Deck is empty, machine passes")
		return nil
	default:
		return err
	}
}
