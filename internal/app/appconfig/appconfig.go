package appconfig

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"exusiai.dev/gateway-admin/internal/app/appcontext"
)

const EnvPrefix = "gwadmin"

func Parse(ctx appcontext.Ctx) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	var spec ConfigSpec
	if err := envconfig.Process(EnvPrefix, &spec); err != nil {
		_ = envconfig.Usage(EnvPrefix, &spec)
		return nil, fmt.Errorf("failed to parse configuration: %w. See internal/app/appconfig/spec.go for the full list of options", err)
	}

	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Config{
		ConfigSpec: spec,
		AppContext: ctx,
	}, nil
}
