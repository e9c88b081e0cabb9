// Package storage provides the durable key-value layer the poll store
// writes through. Three entries persist across restarts: the current user,
// the vote ledger, and the poll collection.
package storage

import (
	"context"
	"errors"
	"fmt"

	"pollstore/config"
)

// Well-known keys. The first two match the names the browser reference
// implementation used for its local storage entries.
const (
	KeyCurrentUser = "pollUser"
	KeyVoteLedger  = "userVotes"
	KeyPolls       = "polls"
)

// ErrKeyNotFound is returned by Get when no value is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// KV is a durable key-value store. Writes happen synchronously right after
// each in-memory mutation that must survive a restart; reads happen once at
// startup. Del on a missing key is a no-op.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Del(ctx context.Context, key string) error
	Close() error
}

// Open creates the KV backend selected by the configuration.
func Open(cfg *config.Config) (KV, error) {
	switch cfg.StorageBackend {
	case "memory":
		return NewMemoryKV(), nil
	case "redis":
		return NewRedisKV(cfg)
	case "sqlite", "mysql", "":
		return NewGormKV(cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
