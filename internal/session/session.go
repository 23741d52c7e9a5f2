// Package session runs a game: it owns the background workers that play
// the machine's turns, detect the end of the game and enforce the UNO call,
// and it is the entry point for every human move.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/unoduel/internal/bot"
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/store"
	"golang.org/x/sync/errgroup"
)

// DefaultThinkDelay is how long the machine pauses before each move
const DefaultThinkDelay = time.Second

// Options configures a Session. Zero durations other than ThinkDelay fall
// back to the defaults.
type Options struct {
	ThinkDelay       time.Duration
	WatchdogInterval time.Duration
	PenaltyMin       time.Duration
	PenaltyMax       time.Duration

	Clock    quartz.Clock
	RNG      *randutil.Locked
	Strategy bot.Strategy
	Store    store.Store // Optional; saves after every human move
	Logger   *log.Logger
}

// Session ties an engine to its workers
type Session struct {
	engine   *game.Engine
	machine  *MachineWorker
	watchdog *Watchdog
	reminder *Reminder
	store    store.Store
	logger   *log.Logger
}

// New creates a session for engine. The workers subscribe to the engine's
// events immediately; call Run to start them.
func New(engine *game.Engine, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = game.QuietLogger()
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.RNG == nil {
		opts.RNG = randutil.NewLocked(randutil.Seed())
	}
	if opts.Strategy == nil {
		opts.Strategy = bot.NewFirstLegal(opts.RNG, opts.Logger)
	}
	if opts.PenaltyMin <= 0 {
		opts.PenaltyMin = DefaultPenaltyMin
	}
	if opts.PenaltyMax <= 0 {
		opts.PenaltyMax = DefaultPenaltyMax
	}

	logger := opts.Logger.WithPrefix("session").With("game_id", engine.ID())
	return &Session{
		engine:   engine,
		machine:  NewMachineWorker(engine, opts.Strategy, opts.Clock, opts.ThinkDelay, opts.Logger),
		watchdog: NewWatchdog(engine, opts.Clock, opts.WatchdogInterval, opts.Logger),
		reminder: NewReminder(engine, opts.Clock, opts.RNG, opts.PenaltyMin, opts.PenaltyMax, opts.Logger),
		store:    opts.Store,
		logger:   logger,
	}
}

// Engine returns the game being played
func (s *Session) Engine() *game.Engine {
	return s.engine
}

// Reminder returns the UNO-call timer
func (s *Session) Reminder() *Reminder {
	return s.reminder
}

// Run deals the game if needed and runs the workers until the game ends or
// ctx is cancelled. The final state is saved on the way out; a finished game
// removes the save instead.
func (s *Session) Run(ctx context.Context) error {
	if s.engine.Phase() == game.PhaseNotStarted {
		if err := s.engine.StartGame(); err != nil {
			return fmt.Errorf("failed to start game: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.machine.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		return s.watchdog.Run(gctx)
	})
	g.Go(func() error {
		return s.reminder.Run(gctx)
	})

	// A restored game may have been saved mid machine turn
	if !s.engine.HumanTurn() && !s.engine.GameOver() {
		s.machine.Signal()
	}

	s.logger.Info("Session started")
	err := g.Wait()
	s.persist()
	s.logger.Info("Session finished", "phase", s.engine.Phase(), "result", s.engine.Result().Reason)
	return err
}

func (s *Session) persist() {
	if s.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.engine.GameOver() {
		if err := s.store.Delete(ctx); err != nil {
			s.logger.Warn("Failed to remove finished game", "error", err)
		}
		return
	}
	if err := s.store.Save(ctx, s.engine.Snapshot()); err != nil {
		s.logger.Warn("Failed to save game", "error", err)
	}
}

func (s *Session) checkHumanTurn() error {
	if s.engine.GameOver() {
		return fmt.Errorf("%w: game is over", game.ErrIllegalState)
	}
	if !s.engine.HumanTurn() {
		return ErrNotYourTurn
	}
	return nil
}

// endHumanTurn hands the turn to the machine
func (s *Session) endHumanTurn() {
	_, won := s.engine.CheckWinner()
	s.engine.SetHumanTurn(false)
	s.persist()
	if !won {
		s.machine.Signal()
	}
}

// HumanPlay plays a card from the human hand. Wild cards need a color.
func (s *Session) HumanPlay(card deck.Card, color deck.Color) error {
	if err := s.checkHumanTurn(); err != nil {
		return err
	}
	if card.IsWild() && color == deck.NoColor {
		return ErrColorRequired
	}
	if !card.IsWild() {
		color = deck.NoColor
	}
	if !s.holds(card) {
		return fmt.Errorf("%w: %s is not in your hand", game.ErrInvalidPlay, card)
	}
	if err := s.engine.PlayCardWithColor(card, color); err != nil {
		return err
	}
	s.logger.Debug("Human played", "card", card, "color", color)
	s.endHumanTurn()
	return nil
}

func (s *Session) holds(card deck.Card) bool {
	for _, c := range s.engine.Hand(game.Human) {
		if c.Same(card) {
			return true
		}
	}
	return false
}

// HumanDraw draws a card and ends the human turn. An empty deck leaves the
// turn with the human, who may then Pass.
func (s *Session) HumanDraw() (deck.Card, error) {
	if err := s.checkHumanTurn(); err != nil {
		return deck.Card{}, err
	}
	card, err := s.engine.DrawCard(game.Human)
	if err != nil {
		if errors.Is(err, game.ErrDeckEmpty) && s.engine.GameOver() {
			s.persist()
		}
		return card, err
	}
	s.logger.Debug("Human drew", "card", card)
	s.endHumanTurn()
	return card, nil
}

// Pass ends the human turn without playing. Only allowed when the deck is
// empty and nothing in hand can be played.
func (s *Session) Pass() error {
	if err := s.checkHumanTurn(); err != nil {
		return err
	}
	v := s.engine.View(game.Human)
	if v.DeckSize > 0 || len(v.Playable) > 0 {
		return ErrCannotPass
	}
	s.logger.Debug("Human passed")
	s.endHumanTurn()
	return nil
}

// Declare is the human calling UNO, for themselves or to catch the machine.
// It may be called at any time, not only on the human's turn.
func (s *Session) Declare() (game.Side, error) {
	if s.engine.GameOver() {
		return game.Human, fmt.Errorf("%w: game is over", game.ErrIllegalState)
	}
	side, err := s.reminder.Declare()
	if err != nil {
		return side, err
	}
	s.persist()
	return side, nil
}

// Subscribe registers a subscriber for engine events
func (s *Session) Subscribe(sub game.EventSubscriber) {
	s.engine.EventBus().Subscribe(sub)
}

// Unsubscribe removes a subscriber
func (s *Session) Unsubscribe(sub game.EventSubscriber) {
	s.engine.EventBus().Unsubscribe(sub)
}
