package config

import (
	"encoding/json"
	"time"
)

// fileConfig mirrors StructuredConfig for JSON and TOML files. Durations are
// written as strings ("30s", "1h").
type fileConfig struct {
	App struct {
		TokenSignKey         string   `json:"token_sign_key" toml:"token_sign_key"`
		TokenIssuer          string   `json:"token_issuer" toml:"token_issuer"`
		TokenDuration        Duration `json:"token_duration" toml:"token_duration"`
		RefreshTokenDuration Duration `json:"refresh_token_duration" toml:"refresh_token_duration"`
		Login                string   `json:"login" toml:"login"`
		Password             string   `json:"password" toml:"password"`
		Version              string   `json:"version" toml:"version"`
	} `json:"app,omitempty" toml:"app"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn" toml:"dsn"`
		} `json:"db,omitempty" toml:"db"`
	} `json:"storage,omitempty" toml:"storage"`

	Server struct {
		HTTPAddress    string   `json:"http_address" toml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" toml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" toml:"request_timeout"`
	} `json:"server,omitempty" toml:"server"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address" toml:"http_address"`
		GRPCAddress    string   `json:"grpc_address" toml:"grpc_address"`
		RequestTimeout Duration `json:"request_timeout" toml:"request_timeout"`
	} `json:"adapter,omitempty" toml:"adapter"`

	Workers struct {
		AutosaveInterval      Duration `json:"autosave_interval" toml:"autosave_interval"`
		WatchdogTimeout       Duration `json:"watchdog_timeout" toml:"watchdog_timeout"`
		WakeDebounce          Duration `json:"wake_debounce" toml:"wake_debounce"`
		SavedRevertDelay      Duration `json:"saved_revert_delay" toml:"saved_revert_delay"`
		RestoreAttempts       uint64   `json:"restore_attempts" toml:"restore_attempts"`
		RestoreBackoff        Duration `json:"restore_backoff" toml:"restore_backoff"`
		ProbeInterval         Duration `json:"probe_interval" toml:"probe_interval"`
		BroadcastPollInterval Duration `json:"broadcast_poll_interval" toml:"broadcast_poll_interval"`
	} `json:"workers,omitempty" toml:"workers"`

	Limits struct {
		MaxNameLength   int `json:"max_name_length" toml:"max_name_length"`
		MaxContentBytes int `json:"max_content_bytes" toml:"max_content_bytes"`
		MaxContentDepth int `json:"max_content_depth" toml:"max_content_depth"`
	} `json:"limits,omitempty" toml:"limits"`
}

func (f *fileConfig) toStructured() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			TokenSignKey:         f.App.TokenSignKey,
			TokenIssuer:          f.App.TokenIssuer,
			TokenDuration:        time.Duration(f.App.TokenDuration),
			RefreshTokenDuration: time.Duration(f.App.RefreshTokenDuration),
			Login:                f.App.Login,
			Password:             f.App.Password,
			Version:              f.App.Version,
		},
		Storage: Storage{
			DB: DB{DSN: f.Storage.DB.DSN},
		},
		Server: Server{
			HTTPAddress:    f.Server.HTTPAddress,
			GRPCAddress:    f.Server.GRPCAddress,
			RequestTimeout: time.Duration(f.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    f.Adapter.HTTPAddress,
			GRPCAddress:    f.Adapter.GRPCAddress,
			RequestTimeout: time.Duration(f.Adapter.RequestTimeout),
		},
		Workers: Workers{
			AutosaveInterval:      time.Duration(f.Workers.AutosaveInterval),
			WatchdogTimeout:       time.Duration(f.Workers.WatchdogTimeout),
			WakeDebounce:          time.Duration(f.Workers.WakeDebounce),
			SavedRevertDelay:      time.Duration(f.Workers.SavedRevertDelay),
			RestoreAttempts:       f.Workers.RestoreAttempts,
			RestoreBackoff:        time.Duration(f.Workers.RestoreBackoff),
			ProbeInterval:         time.Duration(f.Workers.ProbeInterval),
			BroadcastPollInterval: time.Duration(f.Workers.BroadcastPollInterval),
		},
		Limits: Limits{
			MaxNameLength:   f.Limits.MaxNameLength,
			MaxContentBytes: f.Limits.MaxContentBytes,
			MaxContentDepth: f.Limits.MaxContentDepth,
		},
	}
}

// Duration is a wrapper around time.Duration that supports unmarshaling from
// strings like "1h", "30s" in both JSON and TOML files.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		return d.UnmarshalText([]byte(value))
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

// UnmarshalText is used by the TOML decoder.
func (d *Duration) UnmarshalText(b []byte) error {
	tmp, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(tmp)
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
