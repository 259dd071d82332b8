package redisprefs

import (
	"context"
	"errors"
	"testing"
	"time"

	dashboard "github.com/goliatone/go-csdash/components/dashboard"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
	gets   int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.gets++
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestStoreRoundTrip(t *testing.T) {
	fake := newFakeRedis()
	store := New(fake, Options{TTL: time.Hour})
	viewer := dashboard.ViewerContext{UserID: "agent-1"}

	variant, err := store.ThemePreference(context.Background(), viewer)
	require.NoError(t, err)
	assert.Equal(t, dashboard.ThemeLight, variant)

	require.NoError(t, store.SaveThemePreference(context.Background(), viewer, dashboard.ThemeDark))
	assert.Equal(t, "dark", fake.data["csdash:prefs:theme:agent-1"])
	assert.Equal(t, time.Hour, fake.ttls["csdash:prefs:theme:agent-1"])

	variant, err = store.ThemePreference(context.Background(), viewer)
	require.NoError(t, err)
	assert.Equal(t, dashboard.ThemeDark, variant)
}

func TestStoreAnonymousViewer(t *testing.T) {
	fake := newFakeRedis()
	store := New(fake, Options{Prefix: "test:"})

	variant, err := store.ThemePreference(context.Background(), dashboard.ViewerContext{})
	require.NoError(t, err)
	assert.Equal(t, dashboard.ThemeLight, variant)
	assert.Zero(t, fake.gets)

	require.Error(t, store.SaveThemePreference(context.Background(), dashboard.ViewerContext{}, dashboard.ThemeDark))
}

func TestStoreErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.getErr = errors.New("connection refused")
	fake.setErr = errors.New("read only replica")
	store := New(fake, Options{})
	viewer := dashboard.ViewerContext{UserID: "agent-2"}

	variant, err := store.ThemePreference(context.Background(), viewer)
	require.Error(t, err)
	assert.Equal(t, dashboard.ThemeLight, variant)

	err = store.SaveThemePreference(context.Background(), viewer, dashboard.ThemeDark)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redisprefs: set theme")
}

func TestStoreNormalizesUnknownValues(t *testing.T) {
	fake := newFakeRedis()
	fake.data["csdash:prefs:theme:agent-3"] = "neon"
	store := New(fake, Options{})

	variant, err := store.ThemePreference(context.Background(), dashboard.ViewerContext{UserID: "agent-3"})
	require.NoError(t, err)
	assert.Equal(t, dashboard.ThemeLight, variant)
}
