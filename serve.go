package main

import (
	"fmt"
	"time"

	"cycle-server/di"
	"cycle-server/util"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func serveCmd() *cobra.Command {
	var seedPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the predictions refresher",
		RunE: func(cmd *cobra.Command, _ []string) error {
			container, err := di.NewContainer(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			if seedPath != "" {
				if err := seed(container, seedPath); err != nil {
					return err
				}
			}

			log.Info().Msg("[Main] Refreshing predictions")
			if err := container.PredictionsRefresherService.RefreshAll(); err != nil {
				log.Error().Err(err).Msg("[Main] Initial refresh failed")
			}
			container.PredictionsRefresherService.StartPeriodicJob(time.Duration(cfg.Refresher.IntervalMinutes) * time.Minute)
			defer container.PredictionsRefresherService.Stop()

			return container.CycleHttpServer.Start()
		},
	}
	cmd.Flags().StringVar(&seedPath, "seed", "", "JSON file mapping user ids to observations to load before serving")
	return cmd
}

func seed(container *di.Container, path string) error {
	byUser, err := util.ReadSeedFromJSON(path)
	if err != nil {
		return err
	}
	for userID, observations := range byUser {
		for _, o := range observations {
			if _, err := container.CycleService.LogObservation(userID, o); err != nil {
				return fmt.Errorf("failed to seed observation for user %s: %w", userID, err)
			}
		}
		log.Info().Str("user_id", userID).Int("count", len(observations)).Msg("[Main] Seeded observations")
	}
	return nil
}
