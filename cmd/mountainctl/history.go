package main

import (
	"encoding/csv"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tlanclos/isthemountainout/internal/modules/mountain/repository"
)

func historyCmd() *cobra.Command {
	var (
		limit  int
		asCSV  bool
		inZone bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent classification records, newest first",
		Long: `Print recent classification records, newest first.

With --csv the output is the portable three-column format:
timestamp (ISO-8601), label, TRUE/FALSE posted flag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be > 0")
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

			records, err := repository.NewRepository(conn).GetRecent(limit, 0)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			zone := time.UTC
			if inZone {
				if zone, err = time.LoadLocation(cfg.SiteTimezone); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if asCSV {
				w := csv.NewWriter(out)
				for _, rec := range records {
					rec.Timestamp = rec.Timestamp.In(zone)
					if err := w.Write(rec.Row()); err != nil {
						return err
					}
				}
				w.Flush()
				return w.Error()
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tLABEL\tPOSTED")
			for _, rec := range records {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.Timestamp.In(zone).Format(time.RFC3339), rec.Label, rec.PostedFlag())
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of records")
	cmd.Flags().BoolVar(&asCSV, "csv", false, "write the portable CSV format")
	cmd.Flags().BoolVar(&inZone, "local", false, "render timestamps in the site zone instead of UTC")
	return cmd
}
