package server

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/textkit/internal/config"
)

func watcherFixture(t *testing.T, apply func(*config.Config)) *ConfigWatcher {
	t.Helper()
	path := filepath.Join(t.TempDir(), "textkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9999\"\n"), 0o644))

	w, err := NewConfigWatcher(path, apply)
	require.NoError(t, err)
	w.debounceTime = 20 * time.Millisecond
	return w
}

func TestConfigWatcherReloadApplies(t *testing.T) {
	var applied atomic.Pointer[config.Config]
	w := watcherFixture(t, func(cfg *config.Config) { applied.Store(cfg) })
	t.Cleanup(w.Stop)

	w.scheduleReload()
	require.Eventually(t, func() bool {
		return applied.Load() != nil
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, ":9999", applied.Load().Server.Addr)
}

func TestConfigWatcherStopCancelsPendingReload(t *testing.T) {
	var applies atomic.Int32
	w := watcherFixture(t, func(*config.Config) { applies.Add(1) })

	// Arm the debounce timer and stop before it fires.
	w.scheduleReload()
	w.Stop()

	time.Sleep(100 * time.Millisecond)
	require.Zero(t, applies.Load(), "reload must not fire after Stop")
}

func TestConfigWatcherRearmReplacesPendingTimer(t *testing.T) {
	var applies atomic.Int32
	w := watcherFixture(t, func(*config.Config) { applies.Add(1) })
	t.Cleanup(w.Stop)

	w.scheduleReload()
	w.scheduleReload()
	require.Eventually(t, func() bool {
		return applies.Load() > 0
	}, time.Second, 10*time.Millisecond)

	// Debounced bursts collapse into a single reload.
	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int32(1), applies.Load())
}
