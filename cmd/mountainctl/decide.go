package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tlanclos/isthemountainout/internal/announce"
	"github.com/tlanclos/isthemountainout/internal/app"
	"github.com/tlanclos/isthemountainout/internal/migrate"
	"github.com/tlanclos/isthemountainout/internal/modules/mountain/types"
)

func decideCmd() *cobra.Command {
	var (
		label      string
		at         string
		confidence float64
	)
	cmd := &cobra.Command{
		Use:   "decide",
		Short: "Record one observation and print the decision",
		Long: `Run one observation through the decision engine against the configured
database, applying pending migrations first. Announcements are only logged,
never published.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l, err := types.ParseLabel(label)
			if err != nil {
				return err
			}
			ts := time.Now()
			if at != "" {
				if ts, err = time.Parse(time.RFC3339, at); err != nil {
					return fmt.Errorf("invalid --at (expected RFC3339): %w", err)
				}
			}

			cfg, logger, err := setup(cmd)
			if err != nil {
				return err
			}
			conn, closeDB, err := openDB(cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			// same as the server: a fresh database gets its schema first
			if _, err := migrate.Run(conn, logger); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			svc, err := app.NewService(cfg, conn, announce.NewLog(logger), nil, nil, logger)
			if err != nil {
				return err
			}
			d, err := svc.Observe(cmd.Context(), types.Observation{Timestamp: ts, Label: l, Confidence: confidence}, nil)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(d)
		},
	}
	cmd.Flags().StringVarP(&label, "label", "l", "", "classifier label (Night, Hidden, Mystical, Beautiful)")
	cmd.Flags().StringVar(&at, "at", "", "observation time, RFC3339 (default now)")
	cmd.Flags().Float64Var(&confidence, "confidence", 100, "classifier confidence 0-100")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}
