package store

import (
	"context"
	"fmt"
	"time"
)

// Options selects and configures a SessionStore.
type Options struct {
	Kind        Kind
	SQLitePath  string
	RedisAddr   string
	RedisPrefix string
	TTL         time.Duration
}

// Open builds the SessionStore named by opts.Kind. An empty kind is SQLite.
func Open(ctx context.Context, opts Options) (SessionStore, error) {
	switch opts.Kind {
	case KindSQLite, "":
		return NewSQLiteStore(opts.SQLitePath)
	case KindRedis:
		return DialRedis(ctx, opts.RedisAddr, RedisConfig{Prefix: opts.RedisPrefix, TTL: opts.TTL})
	default:
		return nil, fmt.Errorf("unknown store kind %q", opts.Kind)
	}
}
