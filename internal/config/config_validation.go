// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "strings"

// validate checks invariants shared by both binaries. Role specific checks
// live on [ClientConfig] and [ServerConfig].
func (cfg *StructuredConfig) validate() error {
	if cfg.Workers.WakeDebounce < 0 || cfg.Workers.WatchdogTimeout < 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	// the request deadline must fire before the watchdog, otherwise the
	// watchdog would be the only thing ever releasing a hung save
	if cfg.Workers.AutosaveInterval <= 0 ||
		cfg.Workers.WatchdogTimeout <= 0 ||
		cfg.Workers.WatchdogTimeout <= cfg.Adapter.RequestTimeout {
		return ErrInvalidWorkerConfigs
	}

	return nil
}

func (cfg *ServerConfig) validate() error {
	if cfg.Storage.DB.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" {
		return ErrInvalidServerConfigs
	}

	if cfg.Auth.TokenSignKey == "" || cfg.Auth.TokenDuration <= 0 {
		return ErrInvalidAppConfigs
	}

	switch cfg.Auth.NewAccountStatus {
	case "", "active", "pending":
	default:
		return ErrInvalidAppConfigs
	}

	if cfg.Limits.MaxContentDepth <= 0 || cfg.Limits.MaxContentBytes <= 0 {
		return ErrInvalidLimitsConfigs
	}

	return nil
}
