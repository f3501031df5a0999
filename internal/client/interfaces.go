// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the lifecycle contract of the runnable client application.
type Client interface {
	// Run signs in, starts the sync engine and the terminal UI, and blocks
	// until the user quits or ctx is done. Pending edits get one exit save
	// before Run returns.
	Run(ctx context.Context) error
}
