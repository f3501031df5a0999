package config

import (
	"fmt"
	"time"
)

// ClientApp holds client-side application settings.
type ClientApp struct {
	// Login and Password are used for the first login when no stored session
	// exists. Both may be empty if a session is already cached.
	Login    string
	Password string
	// Version is reported in the TUI.
	Version string
}

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the remote record store endpoint.
	HTTPAddress string
	// GRPCAddress is the endpoint probed for connectivity. Empty disables
	// probing.
	GRPCAddress string
	// RequestTimeout is the hard deadline of a single remote write.
	RequestTimeout time.Duration
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path of the local durable cache.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains timings of the sync engine.
type ClientWorkers struct {
	AutosaveInterval      time.Duration
	WatchdogTimeout       time.Duration
	WakeDebounce          time.Duration
	SavedRevertDelay      time.Duration
	RestoreAttempts       uint64
	RestoreBackoff        time.Duration
	ProbeInterval         time.Duration
	BroadcastPollInterval time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// App contains application-level client settings.
	App ClientApp
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains sync engine timings.
	Workers ClientWorkers
}

// GetClientConfig builds and validates a client-specific config view from the
// merged structured configuration.
func GetClientConfig() (*ClientConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := cfg.clientView()
	return clientCfg, clientCfg.validate()
}

func (cfg *StructuredConfig) clientView() *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			Login:    cfg.App.Login,
			Password: cfg.App.Password,
			Version:  cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			GRPCAddress:    cfg.Adapter.GRPCAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			AutosaveInterval:      cfg.Workers.AutosaveInterval,
			WatchdogTimeout:       cfg.Workers.WatchdogTimeout,
			WakeDebounce:          cfg.Workers.WakeDebounce,
			SavedRevertDelay:      cfg.Workers.SavedRevertDelay,
			RestoreAttempts:       cfg.Workers.RestoreAttempts,
			RestoreBackoff:        cfg.Workers.RestoreBackoff,
			ProbeInterval:         cfg.Workers.ProbeInterval,
			BroadcastPollInterval: cfg.Workers.BroadcastPollInterval,
		},
	}
}
