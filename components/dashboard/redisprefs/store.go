// Package redisprefs persists viewer theme preferences in Redis so they
// survive restarts and are shared between csdash instances.
package redisprefs

import (
	"context"
	"errors"
	"fmt"
	"time"

	dashboard "github.com/goliatone/go-csdash/components/dashboard"
	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "csdash:prefs:"

// Client is the subset of the go-redis client the store needs.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// Options configures Store.
type Options struct {
	Prefix string
	// TTL expires stored preferences. Zero keeps them forever.
	TTL time.Duration
}

// Store implements dashboard.PreferenceStore on Redis.
type Store struct {
	client Client
	prefix string
	ttl    time.Duration
}

var _ dashboard.PreferenceStore = (*Store)(nil)

// New wraps a go-redis client.
func New(client Client, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: opts.Prefix, ttl: opts.TTL}
}

// NewFromAddr dials Redis at addr and verifies the connection.
func NewFromAddr(ctx context.Context, addr, password string, db int, opts Options) (*Store, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redisprefs: ping %s: %w", addr, err)
	}
	return New(client, opts), client, nil
}

// ThemePreference returns the stored variant. Anonymous viewers and missing
// keys resolve to light.
func (s *Store) ThemePreference(ctx context.Context, viewer dashboard.ViewerContext) (dashboard.ThemeVariant, error) {
	if viewer.UserID == "" {
		return dashboard.ThemeLight, nil
	}
	value, err := s.client.Get(ctx, s.key(viewer)).Result()
	if errors.Is(err, redis.Nil) {
		return dashboard.ThemeLight, nil
	}
	if err != nil {
		return dashboard.ThemeLight, fmt.Errorf("redisprefs: get theme: %w", err)
	}
	return dashboard.ParseThemeVariant(value), nil
}

// SaveThemePreference stores the variant for a signed-in viewer.
func (s *Store) SaveThemePreference(ctx context.Context, viewer dashboard.ViewerContext, variant dashboard.ThemeVariant) error {
	if viewer.UserID == "" {
		return errors.New("redisprefs: viewer user id is required")
	}
	value := string(dashboard.ParseThemeVariant(string(variant)))
	if err := s.client.Set(ctx, s.key(viewer), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisprefs: set theme: %w", err)
	}
	return nil
}

func (s *Store) key(viewer dashboard.ViewerContext) string {
	return s.prefix + "theme:" + viewer.UserID
}
