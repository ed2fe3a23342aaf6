package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"cycle-server/api"
	"cycle-server/api/cycleapi"
	"cycle-server/models/observation"
	"cycle-server/util"

	"github.com/spf13/cobra"
)

type statsOptions struct {
	file      string
	serverURL string
	userID    string
	months    int
	now       string
	chartPath string
}

func statsCmd() *cobra.Command {
	opts := &statsOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print cycle statistics and predictions",
		Long: `Print cycle statistics and upcoming predictions, either offline from an
observations JSON file (--file) or from a running server (--server and --user).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			return runStats(cmd, client, opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "observations JSON file")
	cmd.Flags().StringVar(&opts.serverURL, "server", "", "base URL of a running cycle-server")
	cmd.Flags().StringVar(&opts.userID, "user", "", "user id (with --server)")
	cmd.Flags().IntVar(&opts.months, "months", 0, "cycles to predict (default from config)")
	cmd.Flags().StringVar(&opts.now, "now", "", "evaluate as of this date (yyyy-mm-dd)")
	cmd.Flags().StringVar(&opts.chartPath, "chart", "", "also write the calendar chart as HTML to this file")
	return cmd
}

func (o *statsOptions) client() (cycleapi.CycleAPI, error) {
	switch {
	case o.file != "" && o.serverURL != "":
		return nil, errors.New("--file and --server are mutually exclusive")
	case o.file != "":
		return cycleapi.NewCycleFileClient(o.file)
	case o.serverURL != "":
		if o.userID == "" {
			return nil, errors.New("--user is required with --server")
		}
		return cycleapi.NewCycleApiClient(api.NewHTTPClient(o.serverURL)), nil
	}
	return nil, errors.New("one of --file or --server is required")
}

func runStats(cmd *cobra.Command, client cycleapi.CycleAPI, opts *statsOptions) error {
	now := observation.DateOnly(time.Now())
	if opts.now != "" {
		parsed, err := observation.ParseDate(opts.now)
		if err != nil {
			return fmt.Errorf("invalid --now: %w", err)
		}
		now = parsed
	}
	months := opts.months
	if months <= 0 && cfg != nil {
		months = cfg.Statistics.MonthsToPredict
	}

	out := cmd.OutOrStdout()
	stats, err := client.GetStatistics(opts.userID, now)
	if err != nil {
		return err
	}
	util.PrintStatistics(out, *stats)

	preds, err := client.GetPredictions(opts.userID, months, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPredictions (%d):\n", len(preds))
	util.PrintPredictions(out, preds)

	if opts.chartPath == "" {
		return nil
	}
	days, err := client.GetCalendar(opts.userID, now.AddDate(0, 0, -30), now.AddDate(0, 0, 90), now)
	if err != nil {
		return err
	}
	f, err := os.Create(opts.chartPath)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	return util.RenderCalendarChart(f, days, "Cycle calendar")
}
