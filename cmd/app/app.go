package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"exusiai.dev/gateway-admin/cmd/app/cli/querystats"
	"exusiai.dev/gateway-admin/cmd/app/server"
	"exusiai.dev/gateway-admin/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "gwadmin",
		Description: "Admin API of the gateway. Serves per-entity request statistics aggregated from the time-bucketed counters in Redis, and the key, keyring and api registry.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			querystats.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}
