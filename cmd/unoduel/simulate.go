package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/bot"
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/session"
	"golang.org/x/sync/errgroup"
)

type SimulateCmd struct {
	Games    int           `default:"100" help:"Number of games to play"`
	Seed     int64         `default:"0" help:"RNG seed (0 for random)"`
	Strategy string        `default:"random" enum:"random,first-legal" help:"Strategy for the human side: random, first-legal"`
	Timeout  time.Duration `default:"30s" help:"Give up on a single game after this long"`
	Verbose  bool          `short:"v" help:"Verbose logging"`
}

type simStats struct {
	mu          sync.Mutex
	humanWins   int
	machineWins int
	exhausted   int
	penalties   int
	cardsPlayed int
}

// statsCollector counts events; they arrive from several goroutines
type statsCollector struct {
	stats *simStats
}

func (s *statsCollector) OnEvent(event game.GameEvent) {
	s.stats.mu.Lock()
	defer s.stats.mu.Unlock()
	switch event.(type) {
	case game.PenaltyEvent:
		s.stats.penalties++
	case game.CardPlayedEvent:
		s.stats.cardsPlayed++
	}
}

func (c *SimulateCmd) Run() error {
	level := log.WarnLevel
	if c.Verbose {
		level = log.DebugLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{Level: level, ReportTimestamp: true})

	seed := c.Seed
	if seed == 0 {
		seed = randutil.Seed()
	}
	logger.Info("Simulating", "games", c.Games, "seed", seed)

	var stats simStats
	start := time.Now()
	for i := 0; i < c.Games; i++ {
		if err := c.playOne(seed+int64(i), &stats, logger); err != nil {
			return fmt.Errorf("game %d (seed %d): %w", i+1, seed+int64(i), err)
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("Games:         %d (seed %d)\n", c.Games, seed)
	fmt.Printf("Human wins:    %d\n", stats.humanWins)
	fmt.Printf("Machine wins:  %d\n", stats.machineWins)
	fmt.Printf("Exhausted:     %d\n", stats.exhausted)
	fmt.Printf("Penalties:     %d\n", stats.penalties)
	fmt.Printf("Cards played:  %d\n", stats.cardsPlayed)
	fmt.Printf("Elapsed:       %s\n", elapsed.Round(time.Millisecond))
	return nil
}

func (c *SimulateCmd) playOne(seed int64, stats *simStats, logger *log.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	rng := randutil.NewLocked(seed)
	engine := game.NewEngine(randutil.New(seed), logger)
	s := session.New(engine, session.Options{
		ThinkDelay: 0,
		RNG:        rng,
		Logger:     logger,
	})
	collector := &statsCollector{stats: stats}
	s.Subscribe(collector)
	defer s.Unsubscribe(collector)

	human, _ := bot.ByName(c.Strategy, rng, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.Run(gctx) })
	g.Go(func() error { return s.Autoplay(gctx, human) })
	if err := g.Wait(); err != nil {
		return err
	}

	if total := cardsInPlay(engine); total != deck.Size {
		return fmt.Errorf("card closure broken: %d cards, want %d", total, deck.Size)
	}

	r := engine.Result()
	stats.mu.Lock()
	defer stats.mu.Unlock()
	switch {
	case r.Reason == game.EndDeckExhausted:
		stats.exhausted++
	case r.Winner == game.Human:
		stats.humanWins++
	default:
		stats.machineWins++
	}
	return nil
}

func cardsInPlay(e *game.Engine) int {
	return e.DeckSize() + len(e.Discard()) + e.HandSize(game.Human) + e.HandSize(game.Machine)
}
