package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tlanclos/isthemountainout/internal/app"
)

func daylightCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "daylight",
		Short: "Print civil dawn and dusk for the site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup(cmd)
			if err != nil {
				return err
			}
			loc, err := app.Location(cfg)
			if err != nil {
				return err
			}
			day := time.Now().In(loc.Zone)
			if date != "" {
				if day, err = time.ParseInLocation("2006-01-02", date, loc.Zone); err != nil {
					return fmt.Errorf("invalid --date (expected YYYY-MM-DD): %w", err)
				}
				day = day.Add(12 * time.Hour)
			}

			w := loc.Window(day)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "site: %s (%s)\n", loc.Name, loc.Zone)
			fmt.Fprintf(out, "date: %s\n", w.Date.Format("2006-01-02"))
			switch {
			case w.AlwaysDark:
				fmt.Fprintln(out, "dark all day")
			case w.AlwaysLight:
				fmt.Fprintln(out, "light all day")
			default:
				fmt.Fprintf(out, "dawn: %s\n", w.Dawn.Format(time.RFC3339))
				fmt.Fprintf(out, "dusk: %s\n", w.Dusk.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "local date YYYY-MM-DD (default today)")
	return cmd
}
