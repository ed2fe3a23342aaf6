package services

import (
	"time"

	"cycle-server/dao"

	"github.com/rs/zerolog/log"
)

// PredictionsRefresherService periodically recomputes the cached predictions
// of every user in the store.
type PredictionsRefresherService struct {
	observationDao dao.ObservationDAO
	cycleService   *CycleService
	stop           chan struct{}
}

// NewPredictionsRefresherService constructs a new Refresher with dependencies.
func NewPredictionsRefresherService(observationDao dao.ObservationDAO, cycleService *CycleService) *PredictionsRefresherService {
	return &PredictionsRefresherService{
		observationDao: observationDao,
		cycleService:   cycleService,
		stop:           make(chan struct{}),
	}
}

// StartPeriodicJob launches the background loop at the given interval.
func (pr *PredictionsRefresherService) StartPeriodicJob(interval time.Duration) {
	go pr.startPeriodicJob(interval)
}

// Stop ends the background loop. It must be called at most once.
func (pr *PredictionsRefresherService) Stop() {
	close(pr.stop)
}

func (pr *PredictionsRefresherService) startPeriodicJob(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-pr.stop:
			log.Info().Msg("[PredictionsRefresherService] Periodic job stopped.")
			return
		case <-ticker.C:
			log.Info().Msg("[PredictionsRefresherService] Running periodic predictions refresher job.")
			if err := pr.RefreshAll(); err != nil {
				log.Error().Err(err).Msg("[PredictionsRefresherService] RefreshAll returned error")
			} else {
				log.Info().Msg("[PredictionsRefresherService] RefreshAll completed successfully.")
			}
		}
	}
}

// RefreshAll recomputes predictions for every known user. A failure for one
// user is logged and does not stop the others; only a failure to list users
// is returned.
func (pr *PredictionsRefresherService) RefreshAll() error {
	ids, err := pr.observationDao.ListUserIDs()
	if err != nil {
		log.Error().Err(err).Msg("[PredictionsRefresherService] Error listing users")
		return err
	}
	log.Info().Int("count", len(ids)).Msg("[PredictionsRefresherService] Refreshing predictions")

	refreshed := 0
	for _, userID := range ids {
		n, err := pr.cycleService.RefreshPredictions(userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("[PredictionsRefresherService] RefreshPredictions failed")
			continue
		}
		refreshed++
		log.Debug().Str("user_id", userID).Int("count", n).Msg("[PredictionsRefresherService] Predictions cached")
	}
	log.Info().Int("refreshed", refreshed).Int("users", len(ids)).Msg("[PredictionsRefresherService] Refresh finished")
	return nil
}
