package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, "10s", cfg.Check.RequestTimeout)
	require.Equal(t, "textkit.deadlinks", cfg.Check.Subject)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textkit.yaml")
	content := `
title:
  all_caps_words: [nasa]
  camel_case_words:
    textkit: TextKit
check:
  request_timeout: 5s
  follow_redirects: true
  cache_path: /tmp/cache.db
server:
  addr: ":9090"
  public_host: example.com
  https: true
  document_root: /srv/www
  prefix: /static
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"nasa"}, cfg.Title.AllCapsWords)
	require.Equal(t, "TextKit", cfg.Title.CamelCaseWords["textkit"])
	require.Equal(t, "5s", cfg.Check.RequestTimeout)
	require.True(t, cfg.Check.FollowRedirects)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.True(t, cfg.Server.HTTPS)
	require.Equal(t, "/static", cfg.Server.Prefix)
}

func TestLoadInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("check:\n  request_timeout: soon\n"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "request_timeout")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TEXTKIT_ADDR", ":7070")
	t.Setenv("TEXTKIT_NATS_URL", "nats://localhost:4222")

	path := filepath.Join(t.TempDir(), "textkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9090\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, "nats://localhost:4222", cfg.Check.NATSURL)
}

func TestEnvOverridesWithoutFile(t *testing.T) {
	t.Setenv("TEXTKIT_ADDR", ":7070")
	t.Setenv("TEXTKIT_DOCUMENT_ROOT", "/srv/www")

	// Overrides apply even when no config file exists.
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.Server.Addr)
	require.Equal(t, "/srv/www", cfg.Server.DocumentRoot)
}

func TestDuration(t *testing.T) {
	require.Equal(t, time.Minute, Duration("", time.Minute))
	require.Equal(t, time.Minute, Duration("bogus", time.Minute))
	require.Equal(t, 5*time.Second, Duration("5s", time.Minute))
}
