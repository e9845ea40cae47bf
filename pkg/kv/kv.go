// Package kv is the key-value store behind each visitor space. Every
// piece of storefront state is a JSON document under a short key, so a
// driver only has to move bytes.
//
//	store, err := kv.Open(ctx, config.StoreDriver())
//	space := kv.Scoped(store, "visitor:"+id)
//	err = kv.SetJSON(ctx, space, "bt_theme", "dark")
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shashiranjanraj/bloomthread/pkg/cache"
	"github.com/shashiranjanraj/bloomthread/pkg/database"
	"github.com/shashiranjanraj/bloomthread/pkg/metrics"
	"github.com/shashiranjanraj/bloomthread/pkg/storage"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("kv: not found")
	// ErrCorrupt wraps GetJSON decode failures.
	ErrCorrupt = errors.New("kv: corrupt value")
)

// Store is implemented by every driver.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// Open connects the driver named by STORE_DRIVER and wraps it with
// latency metrics.
func Open(ctx context.Context, driver string) (Store, error) {
	var s Store
	switch driver {
	case "memory":
		s = NewMemory()
	case "redis":
		if err := cache.Connect(ctx); err != nil {
			return nil, fmt.Errorf("kv: %w", err)
		}
		s = NewRedis(cache.RDB)
	case "database":
		if err := database.Connect(); err != nil {
			return nil, fmt.Errorf("kv: %w", err)
		}
		db, err := NewDatabase(database.DB)
		if err != nil {
			return nil, err
		}
		s = db
	case "disk":
		if err := storage.Connect(); err != nil {
			return nil, fmt.Errorf("kv: %w", err)
		}
		d, err := storage.Default()
		if err != nil {
			return nil, fmt.Errorf("kv: %w", err)
		}
		s = NewDisk(d)
	default:
		return nil, fmt.Errorf("kv: unknown STORE_DRIVER %q", driver)
	}
	return Instrument(driver, s), nil
}

// ─── Scoping ──────────────────────────────────────────────────────────────────

type scoped struct {
	inner  Store
	prefix string
}

// Scoped namespaces every key with prefix. Closing a scoped store does not
// close the parent.
func Scoped(s Store, prefix string) Store {
	return &scoped{inner: s, prefix: prefix + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

func (s *scoped) Ping(ctx context.Context) error { return s.inner.Ping(ctx) }
func (s *scoped) Close() error                   { return nil }

// ─── JSON helpers ─────────────────────────────────────────────────────────────

// GetJSON decodes key into dest. It returns ErrNotFound when the key is
// absent and an ErrCorrupt-wrapped error when the stored bytes are not
// valid JSON for dest.
func GetJSON(ctx context.Context, s Store, key string, dest any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCorrupt, key, err)
	}
	return nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

// ─── Instrumentation ──────────────────────────────────────────────────────────

type instrumented struct {
	Store
	driver string
}

// Instrument records the latency of every operation under driver.
func Instrument(driver string, s Store) Store {
	return &instrumented{Store: s, driver: driver}
}

func (i *instrumented) Get(ctx context.Context, key string) ([]byte, error) {
	defer metrics.ObserveKV(i.driver, "get", time.Now())
	return i.Store.Get(ctx, key)
}

func (i *instrumented) Set(ctx context.Context, key string, value []byte) error {
	defer metrics.ObserveKV(i.driver, "set", time.Now())
	return i.Store.Set(ctx, key, value)
}

func (i *instrumented) Delete(ctx context.Context, key string) error {
	defer metrics.ObserveKV(i.driver, "delete", time.Now())
	return i.Store.Delete(ctx, key)
}
