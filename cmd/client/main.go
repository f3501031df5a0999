package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MKhiriev/go-plan-keeper/internal/client"
	"github.com/MKhiriev/go-plan-keeper/internal/config"
	"github.com/MKhiriev/go-plan-keeper/internal/logger"
	"github.com/MKhiriev/go-plan-keeper/internal/tui"
	"github.com/MKhiriev/go-plan-keeper/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	log := logger.NewClientLogger("go-plan-client", "")
	cfg, err := config.GetClientConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildInfo.BuildVersion()
	}

	ctx := context.Background()

	app, err := client.NewApp(ctx, cfg, buildInfo, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init client app error: %v\n", err)
		log.Fatal().Err(err).Msg("init client app error")
	}

	if err = app.Run(ctx); err != nil {
		if errors.Is(err, tui.ErrUserQuit) {
			return
		}
		fmt.Fprintf(os.Stderr, "client run error: %v\n", err)
		log.Fatal().Err(err).Msg("client run error")
	}
}
