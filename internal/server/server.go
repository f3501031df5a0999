package server

import (
	"context"
	"errors"
	"sync"

	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/handler"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
)

type server struct {
	transports []transport
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")
	servers := &server{logger: logger}

	if cfg.HTTPAddress != "" && handlers.HTTP != nil {
		servers.transports = append(servers.transports, newHTTPServer(handlers.HTTP.Init(), cfg, logger))
	}
	if cfg.GRPCAddress != "" && handlers.GRPC != nil {
		servers.transports = append(servers.transports, newGRPCServer(handlers.GRPC, cfg, logger))
	}

	if len(servers.transports) == 0 {
		return nil, errNoServersAreCreated
	}

	return servers, nil
}

// Run implements [Server]. The first transport failure stops the others
// and is returned.
func (s *server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, len(s.transports))
	var wg sync.WaitGroup

	for _, t := range s.transports {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := t.RunServer(); err != nil {
				errs <- err
				cancel()
			}
		}()
	}

	<-ctx.Done()
	s.logger.Info().Msg("shutting servers down")

	for _, t := range s.transports {
		t.Shutdown()
	}
	wg.Wait()
	close(errs)

	var runErr error
	for err := range errs {
		runErr = errors.Join(runErr, err)
	}
	if runErr == nil {
		s.logger.Info().Msg("server Shutdown gracefully")
	}
	return runErr
}
