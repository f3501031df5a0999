// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg, normally a fresh [StructuredConfig], from the
// process environment. Each section has its own prefix (APP_, STORAGE_,
// SERVER_, ADAPTER_, WORKERS_, LIMITS_), so the sync engine timings read as
// WORKERS_WATCHDOG_TIMEOUT and the server limits as LIMITS_MAX_CONTENT_DEPTH.
// Unset variables leave fields zero; defaults are merged later.
func parseEnv(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("error reading env config: %w", err)
	}
	return nil
}
