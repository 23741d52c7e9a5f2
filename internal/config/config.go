// Package config loads the unoduel HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/unoduel/internal/store"
)

// Environment variables that override the file
const (
	EnvConfig    = "UNODUEL_CONFIG"
	EnvSeed      = "UNODUEL_SEED"
	EnvRedisAddr = "REDIS_ADDR"
)

const DefaultFile = "unoduel.hcl"

// Config is the complete configuration
type Config struct {
	Game   GameSettings   `hcl:"game,block"`
	Timing TimingSettings `hcl:"timing,block"`
	Log    LogSettings    `hcl:"log,block"`
	Store  StoreSettings  `hcl:"store,block"`
	Feed   FeedSettings   `hcl:"feed,block"`
}

type GameSettings struct {
	PlayerName  string `hcl:"player_name,optional"`
	MachineName string `hcl:"machine_name,optional"`
	Seed        int64  `hcl:"seed,optional"`
}

// TimingSettings holds durations in time.ParseDuration syntax
type TimingSettings struct {
	ThinkDelay       string `hcl:"think_delay,optional"`
	WatchdogInterval string `hcl:"watchdog_interval,optional"`
	PenaltyMin       string `hcl:"penalty_min,optional"`
	PenaltyMax       string `hcl:"penalty_max,optional"`
}

type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

type StoreSettings struct {
	Backend   string `hcl:"backend,optional"`
	Path      string `hcl:"path,optional"`
	RedisAddr string `hcl:"redis_addr,optional"`
	RedisKey  string `hcl:"redis_key,optional"`
	RedisDB   int    `hcl:"redis_db,optional"`
}

// FeedSettings configures the spectator websocket. An empty address
// disables it.
type FeedSettings struct {
	Address string `hcl:"address,optional"`
}

// fileConfig mirrors Config with every block optional
type fileConfig struct {
	Game   *GameSettings   `hcl:"game,block"`
	Timing *TimingSettings `hcl:"timing,block"`
	Log    *LogSettings    `hcl:"log,block"`
	Store  *StoreSettings  `hcl:"store,block"`
	Feed   *FeedSettings   `hcl:"feed,block"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Game: GameSettings{
			PlayerName:  "You",
			MachineName: "Machine",
		},
		Timing: TimingSettings{
			ThinkDelay:       "1s",
			WatchdogInterval: "500ms",
			PenaltyMin:       "2s",
			PenaltyMax:       "4s",
		},
		Log: LogSettings{
			Level: "info",
			File:  "unoduel.log",
		},
		Store: StoreSettings{
			Backend:   store.BackendFile,
			Path:      store.DefaultPath,
			RedisAddr: store.DefaultRedisAddr,
			RedisKey:  store.DefaultRedisKey,
		},
	}
}

// Load reads filename, falling back to the defaults when it does not exist,
// then applies environment overrides and validates the result.
func Load(filename string) (*Config, error) {
	cfg := DefaultConfig()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			cfg, err = parseFile(filename)
			if err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat %s: %w", filename, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes HCL source. filename is only used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

func parseFile(filename string) (*Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}
	return decode(file.Body)
}

func decode(body hcl.Body) (*Config, error) {
	var raw fileConfig
	if diags := gohcl.DecodeBody(body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := DefaultConfig()
	if raw.Game != nil {
		cfg.Game = *raw.Game
	}
	if raw.Timing != nil {
		cfg.Timing = *raw.Timing
	}
	if raw.Log != nil {
		cfg.Log = *raw.Log
	}
	if raw.Store != nil {
		cfg.Store = *raw.Store
	}
	if raw.Feed != nil {
		cfg.Feed = *raw.Feed
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills the attributes a block left out
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Game.PlayerName == "" {
		c.Game.PlayerName = def.Game.PlayerName
	}
	if c.Game.MachineName == "" {
		c.Game.MachineName = def.Game.MachineName
	}

	if c.Timing.ThinkDelay == "" {
		c.Timing.ThinkDelay = def.Timing.ThinkDelay
	}
	if c.Timing.WatchdogInterval == "" {
		c.Timing.WatchdogInterval = def.Timing.WatchdogInterval
	}
	if c.Timing.PenaltyMin == "" {
		c.Timing.PenaltyMin = def.Timing.PenaltyMin
	}
	if c.Timing.PenaltyMax == "" {
		c.Timing.PenaltyMax = def.Timing.PenaltyMax
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}

	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	if c.Store.Path == "" {
		c.Store.Path = def.Store.Path
	}
	if c.Store.RedisAddr == "" {
		c.Store.RedisAddr = def.Store.RedisAddr
	}
	if c.Store.RedisKey == "" {
		c.Store.RedisKey = def.Store.RedisKey
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSeed, v, err)
		}
		c.Game.Seed = seed
	}
	if v, ok := lookup(EnvRedisAddr); ok && v != "" {
		c.Store.RedisAddr = v
	}
	return nil
}

// Validate checks the configuration for values the game cannot run with
func (c *Config) Validate() error {
	if c.Game.PlayerName == "" {
		return fmt.Errorf("game: player_name must not be empty")
	}
	if c.Game.MachineName == c.Game.PlayerName {
		return fmt.Errorf("game: machine_name must differ from player_name")
	}

	d, err := c.Timing.Durations()
	if err != nil {
		return err
	}
	if d.ThinkDelay < 0 {
		return fmt.Errorf("timing: think_delay must not be negative")
	}
	if d.WatchdogInterval <= 0 {
		return fmt.Errorf("timing: watchdog_interval must be positive")
	}
	if d.PenaltyMin <= 0 {
		return fmt.Errorf("timing: penalty_min must be positive")
	}
	if d.PenaltyMin > d.PenaltyMax {
		return fmt.Errorf("timing: penalty_min %s is greater than penalty_max %s", d.PenaltyMin, d.PenaltyMax)
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: invalid level %q", c.Log.Level)
	}

	switch c.Store.Backend {
	case store.BackendFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store: path is required for the file backend")
		}
	case store.BackendRedis:
		if c.Store.RedisDB < 0 {
			return fmt.Errorf("store: invalid redis_db %d", c.Store.RedisDB)
		}
	default:
		return fmt.Errorf("store: invalid backend %q", c.Store.Backend)
	}

	return nil
}

// Durations are the parsed timing settings
type Durations struct {
	ThinkDelay       time.Duration
	WatchdogInterval time.Duration
	PenaltyMin       time.Duration
	PenaltyMax       time.Duration
}

// Durations parses every timing attribute
func (t TimingSettings) Durations() (Durations, error) {
	var d Durations
	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"think_delay", t.ThinkDelay, &d.ThinkDelay},
		{"watchdog_interval", t.WatchdogInterval, &d.WatchdogInterval},
		{"penalty_min", t.PenaltyMin, &d.PenaltyMin},
		{"penalty_max", t.PenaltyMax, &d.PenaltyMax},
	}
	for _, f := range fields {
		v, err := time.ParseDuration(f.value)
		if err != nil {
			return d, fmt.Errorf("timing: invalid %s %q: %w", f.name, f.value, err)
		}
		*f.dst = v
	}
	return d, nil
}

// LogLevel returns the parsed level, defaulting to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// StoreOptions converts the store block for store.Open
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:   c.Store.Backend,
		Path:      c.Store.Path,
		RedisAddr: c.Store.RedisAddr,
		RedisKey:  c.Store.RedisKey,
		RedisDB:   c.Store.RedisDB,
	}
}
