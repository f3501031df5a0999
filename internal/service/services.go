package service

import (
	"fmt"

	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/crypto"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/store"
	"github.com/MKhiriev/go-plan-keeper/internal/utils"
	"github.com/MKhiriev/go-plan-keeper/internal/validators"
)

// Services aggregates the reference server's business logic.
type Services struct {
	AuthService    AuthService
	RecordService  RecordService
	ChangeBroker   ChangeBroker
	AppInfoService AppInfoService
}

func NewServices(storages *store.Storages, cfg *config.ServerConfig, logger *logger.Logger) (*Services, error) {
	clock := utils.NewRealClock()

	appInfo, err := NewAppInfoService(cfg.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("error creating app info service: %w", err)
	}

	broker := NewChangeBroker(logger)

	// validation runs first, notifications only after a successful write
	records := NewRecordService(storages.RecordRepository, utils.NewUUIDGenerator(), logger)
	records = NewRecordChangeNotifier(broker, clock).Wrap(records)
	records = NewRecordValidationService(validators.Limits{
		MaxNameLength:   cfg.Limits.MaxNameLength,
		MaxContentBytes: cfg.Limits.MaxContentBytes,
		MaxContentDepth: cfg.Limits.MaxContentDepth,
	}).Wrap(records)

	return &Services{
		AuthService:    NewAuthService(storages.UserRepository, storages.RefreshTokenRepository, crypto.NewPasswordHasher(), cfg.Auth, clock, logger),
		RecordService:  records,
		ChangeBroker:   broker,
		AppInfoService: appInfo,
	}, nil
}
