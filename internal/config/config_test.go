// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Clipmark Contributors

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipmark/clipmark/pkg/errutil"
)

func newFlags(t *testing.T) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(f)
	return f
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.Server.SecureCookies)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, time.Hour, cfg.Session.SweepInterval)
	assert.False(t, cfg.GitHubEnabled())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":3000"
  secure_cookies: false
logging:
  format: text
github:
  client_id: abc
  client_secret: def
`), 0o600))

	cfg, err := Load(path, newFlags(t))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Server.Addr)
	assert.False(t, cfg.Server.SecureCookies)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.True(t, cfg.GitHubEnabled())
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":3000\"\n"), 0o600))

	flags := newFlags(t)
	require.NoError(t, flags.Parse([]string{"--server.addr", ":4000"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)
	assert.Equal(t, ":4000", cfg.Server.Addr)
}

func TestLoad_DatabaseURLEnvWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host:5432/clipmark")

	flags := newFlags(t)
	require.NoError(t, flags.Parse([]string{"--database.url", "postgres://flag-host:5432/clipmark"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env-host:5432/clipmark", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), newFlags(t))
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_FILE_FAILED")
}

func TestLoad_InvalidFormat(t *testing.T) {
	flags := newFlags(t)
	require.NoError(t, flags.Parse([]string{"--logging.format", "xml"}))

	_, err := Load("", flags)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
}
