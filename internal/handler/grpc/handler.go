package grpc

import (
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// serviceName is the name the record API is reported under in addition to
// the overall "" service.
const serviceName = "plankeeper.Records"

// Handler is the root gRPC transport handler.
//
// It exposes the standard grpc.health.v1 service, which clients probe to
// decide whether they are online. A handler instance is created once at
// startup and shared by the gRPC server.
type Handler struct {
	health *health.Server

	// logger is used for diagnostic log output.
	logger *logger.Logger
}

// NewHandler constructs a [Handler] reporting SERVING.
func NewHandler(logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")

	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	return &Handler{
		health: h,
		logger: logger,
	}
}

// Register attaches the handler's services to s.
func (h *Handler) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, h.health)
}

// Shutdown reports NOT_SERVING to every watcher, so clients switch to
// offline before the listener goes away.
func (h *Handler) Shutdown() {
	h.logger.Info().Msg("gRPC health switched to NOT_SERVING")
	h.health.Shutdown()
}
