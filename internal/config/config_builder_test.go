package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// testBuilder не читает os.Args, чтобы флаги `go test` не попадали в парсер.
func testBuilder() *configBuilder {
	b := newConfigBuilder()
	b.args = nil
	return b
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := testBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := testBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// TestBuild_EarlierSourceWins verifies mergo semantics: a field set by an
// earlier source is not overwritten by a later one.
func TestBuild_EarlierSourceWins(t *testing.T) {
	b := testBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{Version: "1.0.0"}},
		&StructuredConfig{App: App{Version: "2.0.0", TokenIssuer: "issuer"}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", cfg.App.Version)
	assert.Equal(t, "issuer", cfg.App.TokenIssuer)
}

func TestBuild_RejectsNegativeWatchdog(t *testing.T) {
	b := testBuilder()
	b.configs = append(b.configs, &StructuredConfig{Workers: Workers{WatchdogTimeout: -time.Second}})

	_, err := b.build()
	assert.ErrorIs(t, err, ErrInvalidWorkerConfigs)
}

// ── withEnv ───────────────────────────────────────────────────────────────────

func TestWithEnv_ReturnsBuilder(t *testing.T) {
	b := testBuilder()
	assert.Same(t, b, b.withEnv())
}

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	t.Setenv("APP_VERSION", "env-version")
	t.Setenv("WORKERS_WATCHDOG_TIMEOUT", "50s")

	b := testBuilder()
	b.withEnv()

	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-version", b.configs[0].App.Version)
	assert.Equal(t, 50*time.Second, b.configs[0].Workers.WatchdogTimeout)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

func TestWithFlags_AppendsParsedFlags(t *testing.T) {
	b := testBuilder()
	b.args = []string{"-d", "/tmp/cache.db", "-watchdog-timeout", "1m"}
	b.withFlags()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "/tmp/cache.db", b.configs[0].Storage.DB.DSN)
	assert.Equal(t, time.Minute, b.configs[0].Workers.WatchdogTimeout)
}

func TestWithFlags_UnknownFlag(t *testing.T) {
	b := testBuilder()
	b.args = []string{"-no-such-flag"}
	b.withFlags()

	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withFile ──────────────────────────────────────────────────────────────────

func TestWithFile_NoOp_WhenNoPathSet(t *testing.T) {
	b := testBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withFile()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestWithFile_AppendsJSON(t *testing.T) {
	payload := fileConfig{}
	payload.App.Version = "json-version"
	path := writeTempJSONConfig(t, payload)

	b := testBuilder()
	b.configs = append(b.configs, &StructuredConfig{FilePath: path})
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, "json-version", b.configs[1].App.Version)
}

func TestWithFile_AppendsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	require.NoError(t, os.WriteFile(path, []byte("[workers]\nwake_debounce = \"750ms\"\n"), 0o600))

	b := testBuilder()
	b.configs = append(b.configs, &StructuredConfig{FilePath: path})
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 2)
	assert.Equal(t, 750*time.Millisecond, b.configs[1].Workers.WakeDebounce)
}

func TestWithFile_SetsError_WhenFileNotFound(t *testing.T) {
	b := testBuilder()
	b.configs = append(b.configs, &StructuredConfig{FilePath: "/nonexistent/config.json"})
	b.withFile()

	assert.Error(t, b.err)
}

// TestWithFile_UsesFirstPath verifies that the env path beats the flag path.
func TestWithFile_UsesFirstPath(t *testing.T) {
	first := fileConfig{}
	first.App.Version = "first"
	second := fileConfig{}
	second.App.Version = "second"

	b := testBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{FilePath: writeTempJSONConfig(t, first)},
		&StructuredConfig{FilePath: writeTempJSONConfig(t, second)},
	)
	b.withFile()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 3)
	assert.Equal(t, "first", b.configs[2].App.Version)
}

// ── withDefaults ──────────────────────────────────────────────────────────────

func TestWithDefaults_FillsOnlyMissing(t *testing.T) {
	b := testBuilder()
	b.configs = append(b.configs, &StructuredConfig{Workers: Workers{WakeDebounce: time.Second}})
	b.withDefaults()

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, time.Second, cfg.Workers.WakeDebounce)
	assert.Equal(t, DefaultWatchdogTimeout, cfg.Workers.WatchdogTimeout)
	assert.Equal(t, DefaultAutosaveInterval, cfg.Workers.AutosaveInterval)
	assert.Equal(t, DefaultMaxContentDepth, cfg.Limits.MaxContentDepth)
}
