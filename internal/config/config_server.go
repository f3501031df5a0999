package config

import (
	"fmt"
	"time"
)

// ServerAuth holds token issuing settings.
type ServerAuth struct {
	TokenSignKey         string
	TokenIssuer          string
	TokenDuration        time.Duration
	RefreshTokenDuration time.Duration
	NewAccountStatus     string
}

// ServerConfig is the server configuration view of [StructuredConfig].
type ServerConfig struct {
	Auth    ServerAuth
	Server  Server
	Storage Storage
	Limits  Limits
	Version string
}

// GetServerConfig builds and validates the server configuration view.
func GetServerConfig() (*ServerConfig, error) {
	cfg, err := GetStructuredConfig()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	serverCfg := cfg.serverView()
	return serverCfg, serverCfg.validate()
}

func (cfg *StructuredConfig) serverView() *ServerConfig {
	return &ServerConfig{
		Auth: ServerAuth{
			TokenSignKey:         cfg.App.TokenSignKey,
			TokenIssuer:          cfg.App.TokenIssuer,
			TokenDuration:        cfg.App.TokenDuration,
			RefreshTokenDuration: cfg.App.RefreshTokenDuration,
			NewAccountStatus:     cfg.App.NewAccountStatus,
		},
		Server:  cfg.Server,
		Storage: cfg.Storage,
		Limits:  cfg.Limits,
		Version: cfg.App.Version,
	}
}
