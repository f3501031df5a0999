// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the interactive client application runtime.
//
// It wires the terminal UI, the sync engine services and the background
// workers (lifecycle dispatcher, change feed, cross-instance broadcast,
// connectivity probe) into a single process lifecycle.
package client
