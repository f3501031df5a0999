// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// go-plan-keeper client and server. It aggregates all sub-configurations and
// is populated by merging values from environment variables, command-line
// flags, an optional JSON/TOML file and built-in defaults.
//
// Struct tags:
//   - envPrefix - prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       - direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds application-level settings: token parameters, client
	// credentials and the application version.
	App App `envPrefix:"APP_"`

	// Storage holds persistence settings (PostgreSQL DSN on the server,
	// SQLite file path on the client).
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds listen addresses and timeouts of the HTTP and gRPC servers.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the remote endpoints the client talks to.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds timings of the client sync engine.
	Workers Workers `envPrefix:"WORKERS_"`

	// Limits holds record validation limits enforced by the server.
	Limits Limits `envPrefix:"LIMITS_"`

	// FilePath is the optional path to a JSON or TOML configuration file.
	// The format is chosen by extension (.toml, otherwise JSON).
	// Populated via the CONFIG environment variable or the -c / -config flag.
	FilePath string `env:"CONFIG"`
}

// App holds application-level configuration values.
type App struct {
	// TokenSignKey is the secret key used to sign and verify JWT tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// TokenIssuer is the "iss" claim embedded in every issued JWT token.
	// Env: APP_TOKEN_ISSUER
	TokenIssuer string `env:"TOKEN_ISSUER"`

	// TokenDuration is the lifetime of an access token.
	// Env: APP_TOKEN_DURATION
	TokenDuration time.Duration `env:"TOKEN_DURATION"`

	// RefreshTokenDuration is the lifetime of a refresh token.
	// Env: APP_REFRESH_TOKEN_DURATION
	RefreshTokenDuration time.Duration `env:"REFRESH_TOKEN_DURATION"`

	// Login and Password are the client credentials used when no stored
	// session can be restored.
	// Env: APP_LOGIN, APP_PASSWORD
	Login    string `env:"LOGIN"`
	Password string `env:"PASSWORD"`

	// NewAccountStatus is the status given to freshly registered users:
	// "active" or "pending" (an operator activates the account later).
	// Env: APP_NEW_ACCOUNT_STATUS
	NewAccountStatus string `env:"NEW_ACCOUNT_STATUS"`

	// Version is the semantic version string of the running application.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups the configuration for storage backends.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is the PostgreSQL connection string on the server and the SQLite
	// file path on the client.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds network and timeout settings for the inbound transport layer.
type Server struct {
	// HTTPAddress is the TCP address on which the HTTP server listens.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the TCP address of the gRPC health service.
	// Env: SERVER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds the remote endpoints used by the client.
type Adapter struct {
	// HTTPAddress is the base address of the remote record store.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// GRPCAddress is the address probed for connectivity.
	// Env: ADAPTER_GRPC_ADDRESS
	GRPCAddress string `env:"GRPC_ADDRESS"`

	// RequestTimeout is the hard deadline of a single remote write.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds the timings of the client sync engine.
type Workers struct {
	// AutosaveInterval is the period of the autosave tick.
	// Env: WORKERS_AUTOSAVE_INTERVAL
	AutosaveInterval time.Duration `env:"AUTOSAVE_INTERVAL"`

	// WatchdogTimeout bounds how long the save lock may be held.
	// Env: WORKERS_WATCHDOG_TIMEOUT
	WatchdogTimeout time.Duration `env:"WATCHDOG_TIMEOUT"`

	// WakeDebounce collapses bursts of wake signals.
	// Env: WORKERS_WAKE_DEBOUNCE
	WakeDebounce time.Duration `env:"WAKE_DEBOUNCE"`

	// SavedRevertDelay is how long the "saved" state is shown before idle.
	// Env: WORKERS_SAVED_REVERT_DELAY
	SavedRevertDelay time.Duration `env:"SAVED_REVERT_DELAY"`

	// RestoreAttempts and RestoreBackoff control session restore retries
	// after wake.
	// Env: WORKERS_RESTORE_ATTEMPTS, WORKERS_RESTORE_BACKOFF
	RestoreAttempts uint64        `env:"RESTORE_ATTEMPTS"`
	RestoreBackoff  time.Duration `env:"RESTORE_BACKOFF"`

	// ProbeInterval is how often connectivity is probed.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// BroadcastPollInterval is how often the cross-instance outbox is read.
	// Env: WORKERS_BROADCAST_POLL_INTERVAL
	BroadcastPollInterval time.Duration `env:"BROADCAST_POLL_INTERVAL"`
}

// Limits holds server-side record validation limits.
type Limits struct {
	// MaxNameLength is the maximum length of a record name in runes.
	// Env: LIMITS_MAX_NAME_LENGTH
	MaxNameLength int `env:"MAX_NAME_LENGTH"`

	// MaxContentBytes is the maximum serialized size of record content.
	// Env: LIMITS_MAX_CONTENT_BYTES
	MaxContentBytes int `env:"MAX_CONTENT_BYTES"`

	// MaxContentDepth is the maximum nesting depth of record content.
	// Env: LIMITS_MAX_CONTENT_DEPTH
	MaxContentDepth int `env:"MAX_CONTENT_DEPTH"`
}

// GetStructuredConfig loads, merges, and validates the application
// configuration. Sources are merged with mergo, which only fills fields that
// are still zero, so earlier sources take precedence:
//  1. Environment variables
//  2. Command-line flags
//  3. Config file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withFile().
		withDefaults().
		build()
}
