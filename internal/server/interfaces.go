package server

import "context"

// Server defines the lifecycle contract of the application server.
type Server interface {
	// Run serves requests until ctx is cancelled or a transport fails, then
	// shuts every transport down.
	Run(ctx context.Context) error
}

// transport is one listener managed by the server.
type transport interface {
	// RunServer starts serving requests and blocks until the server stops.
	RunServer() error

	// Shutdown gracefully stops the server and frees associated resources.
	Shutdown()
}
