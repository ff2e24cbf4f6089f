package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"homeledger"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Ledger struct {
		// Currency is the single display currency for the whole ledger;
		// amounts are stored in minor units and never converted.
		Currency string `envconfig:"LEDGER_CURRENCY" default:"USD"`
	}

	DB struct {
		// URL selects the postgres store when set; empty falls back to the
		// in-memory store.
		URL string `envconfig:"DATABASE_URL"`
	}

	Auth struct {
		// JWTSecret enables the HS256 bearer-token resolver when set.
		JWTSecret string `envconfig:"JWT_HS256_SECRET"`
		Issuer    string `envconfig:"JWT_ISSUER"`
		Audience  string `envconfig:"JWT_AUDIENCE"`
		// TrustedHeader names a header carrying a pre-verified principal
		// (set by a fronting gateway). Empty disables the header resolver.
		TrustedHeader string `envconfig:"IDENTITY_HEADER"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"json"`
	}

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"5s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"10s"`
		IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	}
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}
	return &cfg, nil
}
