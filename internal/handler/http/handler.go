package http

import (
	"time"

	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/service"
)

// keepAliveInterval is how often the change feed writes a comment line, so
// proxies and the client notice a dead connection.
const keepAliveInterval = 25 * time.Second

type Handler struct {
	services *service.Services

	requestTimeout time.Duration
	keepAlive      time.Duration

	logger *logger.Logger
}

// NewHandler creates the HTTP handler. requestTimeout bounds every route
// except the change feed; zero disables it.
func NewHandler(services *service.Services, requestTimeout time.Duration, logger *logger.Logger) *Handler {
	logger.Info().Msg("http handler created")
	return &Handler{
		services:       services,
		requestTimeout: requestTimeout,
		keepAlive:      keepAliveInterval,
		logger:         logger,
	}
}
