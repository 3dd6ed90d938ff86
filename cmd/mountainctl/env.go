package main

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/tlanclos/isthemountainout/internal/config"
	"github.com/tlanclos/isthemountainout/internal/db"
)

// setup loads configuration and a stderr logger so stdout stays machine readable.
func setup(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return config.Config{}, nil, err
	}
	logger := slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      cfg.LogLevel,
		TimeFormat: time.Kitchen,
		NoColor:    true,
	}))
	return cfg, logger, nil
}

func openDB(cfg config.Config, logger *slog.Logger) (*sql.DB, func(), error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return conn, func() {
		if err := db.Close(conn); err != nil {
			logger.Error("db close", "err", err)
		}
	}, nil
}
