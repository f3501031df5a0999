package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTOML_Success(t *testing.T) {
	p := filepath.Join(t.TempDir(), "client.toml")
	body := `
[app]
login = "alice"

[adapter]
http_address = "localhost:8080"
request_timeout = "20s"

[workers]
autosave_interval = "1m"
watchdog_timeout = "45s"
saved_revert_delay = "3s"
restore_attempts = 2

[storage.db]
dsn = "plans.db"
`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	cfg, err := parseTOML(p)

	require.NoError(t, err)
	assert.Equal(t, "alice", cfg.App.Login)
	assert.Equal(t, "localhost:8080", cfg.Adapter.HTTPAddress)
	assert.Equal(t, 20*time.Second, cfg.Adapter.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.Workers.AutosaveInterval)
	assert.Equal(t, 45*time.Second, cfg.Workers.WatchdogTimeout)
	assert.Equal(t, 3*time.Second, cfg.Workers.SavedRevertDelay)
	assert.Equal(t, uint64(2), cfg.Workers.RestoreAttempts)
	assert.Equal(t, "plans.db", cfg.Storage.DB.DSN)
}

func TestParseTOML_FileNotFound(t *testing.T) {
	cfg, err := parseTOML(filepath.Join(t.TempDir(), "missing.toml"))

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error reading a toml file")
}

func TestParseTOML_InvalidDuration(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(p, []byte("[workers]\nwake_debounce = \"later\"\n"), 0o600))

	cfg, err := parseTOML(p)

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "error decoding toml configs")
}
