// Package store persists game snapshots so a game can be continued later.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/lox/unoduel/internal/game"
)

// ErrNoSnapshot is returned by Load when nothing has been saved
var ErrNoSnapshot = errors.New("no saved game")

// Store saves and loads a single game snapshot
type Store interface {
	Save(ctx context.Context, snapshot game.Snapshot) error
	Load(ctx context.Context) (game.Snapshot, error)
	Delete(ctx context.Context) error
	Close() error
}

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a backend
type Options struct {
	Backend   string
	Path      string
	RedisAddr string
	RedisKey  string
	RedisDB   int
}

// Open returns the configured store. The redis backend is pinged before it
// is returned.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(opts.Path), nil
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisDB, opts.RedisKey)
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
