package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/config"
	"github.com/lox/unoduel/internal/feed"
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/randutil"
	"github.com/lox/unoduel/internal/session"
	"github.com/lox/unoduel/internal/store"
	"github.com/lox/unoduel/internal/tui"
	"github.com/muesli/termenv"
	"golang.org/x/sync/errgroup"
)

type PlayCmd struct {
	Continue bool   `help:"Resume the saved game"`
	Config   string `type:"path" default:"unoduel.hcl" env:"UNODUEL_CONFIG" help:"HCL configuration file"`
	Seed     int64  `default:"0" help:"RNG seed (0 uses the config, then a random seed)"`
	Name     string `help:"Your name (overrides game.player_name)"`
	NoColor  bool   `help:"Disable colors"`
}

func (c *PlayCmd) Run() error {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return err
	}
	if c.Seed != 0 {
		cfg.Game.Seed = c.Seed
	}
	if c.Name != "" {
		cfg.Game.PlayerName = c.Name
	}
	if c.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger, closeLog, err := openLog(cfg.Log.File, cfg.LogLevel())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	engine, err := c.engine(ctx, cfg, st, logger)
	if err != nil {
		return err
	}

	timing, err := cfg.Timing.Durations()
	if err != nil {
		return err
	}
	s := session.New(engine, session.Options{
		ThinkDelay:       timing.ThinkDelay,
		WatchdogInterval: timing.WatchdogInterval,
		PenaltyMin:       timing.PenaltyMin,
		PenaltyMax:       timing.PenaltyMax,
		RNG:              randutil.NewLocked(seedOrRandom(cfg.Game.Seed)),
		Store:            st,
		Logger:           logger,
	})

	model := tui.NewModel(s, logger)
	program := tea.NewProgram(model, tea.WithAltScreen())
	bridge := tui.NewBridge(program, logger)
	s.Subscribe(bridge)
	defer s.Unsubscribe(bridge)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Feed.Address != "" {
		hub := feed.NewHub(engine.ID(), game.FormattingOptions{
			HumanName:   engine.Name(game.Human),
			MachineName: engine.Name(game.Machine),
		}, logger)
		s.Subscribe(hub)
		defer s.Unsubscribe(hub)
		g.Go(func() error { return hub.Serve(gctx, cfg.Feed.Address) })
	}
	g.Go(func() error { return bridge.Run(gctx) })
	g.Go(func() error { return s.Run(gctx) })

	_, runErr := program.Run()
	cancel()
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Game workers failed", "error", err)
	}
	if runErr != nil {
		return fmt.Errorf("terminal UI failed: %w", runErr)
	}

	formatter := game.NewEventFormatter(game.FormattingOptions{
		HumanName:   engine.Name(game.Human),
		MachineName: engine.Name(game.Machine),
	})
	if engine.GameOver() {
		fmt.Println(formatter.FormatResult(engine.Result()))
	} else {
		fmt.Println("Game saved. Run `unoduel play --continue` to resume.")
	}
	return nil
}

func (c *PlayCmd) engine(ctx context.Context, cfg *config.Config, st store.Store, logger *log.Logger) (*game.Engine, error) {
	if c.Continue {
		snap, err := st.Load(ctx)
		if errors.Is(err, store.ErrNoSnapshot) {
			return nil, fmt.Errorf("no saved game to continue")
		}
		if err != nil {
			return nil, err
		}
		name := snap.PlayerName
		if c.Name != "" || name == "" {
			name = cfg.Game.PlayerName
		}
		e, err := game.Restore(snap, logger, game.WithPlayerNames(name, cfg.Game.MachineName))
		if err != nil {
			return nil, fmt.Errorf("failed to restore saved game: %w", err)
		}
		if e.GameOver() {
			return nil, fmt.Errorf("the saved game is already over")
		}
		return e, nil
	}

	seed := seedOrRandom(cfg.Game.Seed)
	logger.Info("New game", "seed", seed)
	return game.NewEngine(randutil.New(seed), logger,
		game.WithPlayerNames(cfg.Game.PlayerName, cfg.Game.MachineName)), nil
}

func seedOrRandom(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return randutil.Seed()
}

// openLog sends logging to a file so it does not draw over the TUI
func openLog(path string, level log.Level) (*log.Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
	return logger, func() { _ = f.Close() }, nil
}
