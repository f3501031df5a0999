package config

import "time"

// Default timings of the client sync engine and server limits. They are
// merged last, so any explicitly configured value wins.
const (
	DefaultAutosaveInterval      = 30 * time.Second
	DefaultWatchdogTimeout       = 45 * time.Second
	DefaultWakeDebounce          = 500 * time.Millisecond
	DefaultSavedRevertDelay      = 2 * time.Second
	DefaultRestoreAttempts       = 3
	DefaultRestoreBackoff        = 250 * time.Millisecond
	DefaultProbeInterval         = 10 * time.Second
	DefaultBroadcastPollInterval = time.Second
	DefaultRequestTimeout        = 15 * time.Second

	DefaultTokenDuration        = 15 * time.Minute
	DefaultRefreshTokenDuration = 30 * 24 * time.Hour

	DefaultMaxNameLength   = 256
	DefaultMaxContentBytes = 1 << 20
	DefaultMaxContentDepth = 32
)

func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenIssuer:          "go-plan-keeper",
			TokenDuration:        DefaultTokenDuration,
			RefreshTokenDuration: DefaultRefreshTokenDuration,
			NewAccountStatus:     "active",
		},
		Server: Server{
			RequestTimeout: DefaultRequestTimeout,
		},
		Adapter: Adapter{
			RequestTimeout: DefaultRequestTimeout,
		},
		Workers: Workers{
			AutosaveInterval:      DefaultAutosaveInterval,
			WatchdogTimeout:       DefaultWatchdogTimeout,
			WakeDebounce:          DefaultWakeDebounce,
			SavedRevertDelay:      DefaultSavedRevertDelay,
			RestoreAttempts:       DefaultRestoreAttempts,
			RestoreBackoff:        DefaultRestoreBackoff,
			ProbeInterval:         DefaultProbeInterval,
			BroadcastPollInterval: DefaultBroadcastPollInterval,
		},
		Limits: Limits{
			MaxNameLength:   DefaultMaxNameLength,
			MaxContentBytes: DefaultMaxContentBytes,
			MaxContentDepth: DefaultMaxContentDepth,
		},
	}
}
