package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReportsValidChange(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	changed := make(chan *Config, 1)
	watcher, err := NewWatcher(path,
		func(cfg *Config) { changed <- cfg },
		WithDebounceDelay(20*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { _ = watcher.Stop() }()

	updated := sampleConfig + "\nsigning:\n  enabled: true\n  key: rotated\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	select {
	case cfg := <-changed:
		assert.True(t, cfg.Signing.Enabled)
		assert.Equal(t, "rotated", cfg.Signing.Key)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}
}

func TestWatcher_ReportsInvalidChange(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	failed := make(chan error, 1)
	watcher, err := NewWatcher(path,
		func(*Config) { t.Error("change callback fired for invalid config") },
		WithDebounceDelay(20*time.Millisecond),
		WithErrorCallback(func(err error) { failed <- err }),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))
	defer func() { _ = watcher.Stop() }()

	require.NoError(t, os.WriteFile(path, []byte("server: [broken"), 0o600))

	select {
	case err := <-failed:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for error callback")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	watcher, err := NewWatcher(path,
		func(*Config) { t.Error("change callback fired for unrelated file") },
		WithDebounceDelay(20*time.Millisecond),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, watcher.Start(ctx))

	other := filepath.Join(filepath.Dir(path), "unrelated.yaml")
	require.NoError(t, os.WriteFile(other, []byte("noise: true"), 0o600))

	time.Sleep(200 * time.Millisecond)
	require.NoError(t, watcher.Stop())
}

func TestWatcher_StopReturnsAfterFailedStart(t *testing.T) {
	t.Parallel()

	// The parent directory does not exist, so Start fails before the
	// watch goroutine launches.
	missing := filepath.Join(t.TempDir(), "missing", "gateway.yaml")
	watcher, err := NewWatcher(missing, nil)
	require.NoError(t, err)

	require.Error(t, watcher.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		assert.NoError(t, watcher.Stop())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after failed Start")
	}

	// A second Start attempt is allowed and fails the same way.
	require.Error(t, watcher.Start(context.Background()))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, sampleConfig)

	watcher, err := NewWatcher(path, nil)
	require.NoError(t, err)

	require.NoError(t, watcher.Start(context.Background()))
	require.NoError(t, watcher.Stop())
	require.NoError(t, watcher.Stop())
}
