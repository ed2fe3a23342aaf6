package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cycle-server/dao"
	"cycle-server/db"
	"cycle-server/models/observation"

	"github.com/golang/snappy"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// OBSERVATION_KEY_FORMAT holds one snappy-compressed observation: user, date.
const OBSERVATION_KEY_FORMAT = "observation_v1:%s:%s"

// OBSERVATION_DATES_KEY_FORMAT is the per-user sorted set of logged dates.
const OBSERVATION_DATES_KEY_FORMAT = "observation_dates_v1:%s"

// PREDICTIONS_KEY_FORMAT caches the last generated predictions per user.
const PREDICTIONS_KEY_FORMAT = "predictions_v1:%s"

const secondsPerDay = 24 * 60 * 60

// RedisObservationDAO handles observation operations using Redis.
type RedisObservationDAO struct {
	client db.RedisClient
}

var _ dao.ObservationDAO = (*RedisObservationDAO)(nil)

// NewRedisObservationDAO initializes a RedisObservationDAO with the Redis client.
func NewRedisObservationDAO(client db.RedisClient) *RedisObservationDAO {
	return &RedisObservationDAO{client: client}
}

// UpsertObservation stores the observation under its date and indexes the date.
func (d *RedisObservationDAO) UpsertObservation(userID string, o observation.Observation) (observation.Observation, error) {
	o.Normalize()
	dateKey := observation.FormatDate(o.Date)

	if o.ID == "" {
		existing, err := d.GetObservation(userID, o.Date)
		switch {
		case err == nil:
			o.ID = existing.ID
		case errors.Is(err, dao.ErrNotFound):
			o.ID = uuid.NewString()
		default:
			return observation.Observation{}, err
		}
	}

	payload, err := encode(o)
	if err != nil {
		return observation.Observation{}, fmt.Errorf("failed to encode observation %s for user %s: %w", dateKey, userID, err)
	}
	if err := d.client.Set(observationKey(userID, o.Date), payload); err != nil {
		return observation.Observation{}, fmt.Errorf("failed to set observation in redis: %w", err)
	}
	if err := d.client.AddToDateIndex(datesKey(userID), dateKey, dayScore(o.Date)); err != nil {
		return observation.Observation{}, err
	}

	log.Debug().Str("user_id", userID).Str("date", dateKey).Msg("[RedisObservationDAO] Upserted observation")
	return o, nil
}

// GetObservation retrieves the observation logged for a user on a date.
func (d *RedisObservationDAO) GetObservation(userID string, date time.Time) (*observation.Observation, error) {
	str, err := d.client.Get(observationKey(userID, date))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("observation %s for user %s: %w", observation.FormatDate(date), userID, dao.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get observation from redis: %w", err)
	}
	var o observation.Observation
	if err := decode(str, &o); err != nil {
		return nil, fmt.Errorf("failed to decode observation JSON: %w", err)
	}
	return &o, nil
}

func (d *RedisObservationDAO) DeleteObservation(userID string, date time.Time) error {
	if _, err := d.GetObservation(userID, date); err != nil {
		return err
	}
	if err := d.client.Del(observationKey(userID, date)); err != nil {
		return fmt.Errorf("failed to delete observation key: %w", err)
	}
	if err := d.client.RemoveFromDateIndex(datesKey(userID), observation.FormatDate(date)); err != nil {
		return fmt.Errorf("failed to remove %s from date index: %w", observation.FormatDate(date), err)
	}
	log.Debug().Str("user_id", userID).Str("date", observation.FormatDate(date)).Msg("[RedisObservationDAO] Deleted observation")
	return nil
}

// GetObservationsInRange walks the date index and loads each observation.
// Index entries whose payload has disappeared are skipped.
func (d *RedisObservationDAO) GetObservationsInRange(userID string, from, to time.Time) ([]observation.Observation, error) {
	dates, err := d.client.RangeDateIndex(datesKey(userID), dayScore(from), dayScore(to))
	if err != nil {
		return nil, fmt.Errorf("[RedisObservationDAO] failed to get observation dates: %w", err)
	}

	out := make([]observation.Observation, 0, len(dates))
	for _, dateKey := range dates {
		date, err := observation.ParseDate(dateKey)
		if err != nil {
			log.Warn().Str("user_id", userID).Str("date", dateKey).Msg("[RedisObservationDAO] Skipping malformed index entry")
			continue
		}
		o, err := d.GetObservation(userID, date)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				log.Warn().Str("user_id", userID).Str("date", dateKey).Msg("[RedisObservationDAO] Index entry without payload, skipping")
				continue
			}
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

// ListUserIDs returns every user with at least one indexed observation.
func (d *RedisObservationDAO) ListUserIDs() ([]string, error) {
	pattern := fmt.Sprintf(OBSERVATION_DATES_KEY_FORMAT, "*")
	keys, err := d.client.Keys(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list observation index keys: %w", err)
	}
	prefix := fmt.Sprintf(OBSERVATION_DATES_KEY_FORMAT, "")
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, prefix))
	}
	return ids, nil
}

// SetPredictions caches the predictions for a user, replacing older ones.
func (d *RedisObservationDAO) SetPredictions(userID string, predictions []observation.Observation) error {
	payload, err := encode(predictions)
	if err != nil {
		return fmt.Errorf("failed to encode predictions for user %s: %w", userID, err)
	}
	if err := d.client.Set(fmt.Sprintf(PREDICTIONS_KEY_FORMAT, userID), payload); err != nil {
		return fmt.Errorf("failed to set predictions in redis: %w", err)
	}
	return nil
}

// GetPredictions retrieves the cached predictions for a user.
func (d *RedisObservationDAO) GetPredictions(userID string) ([]observation.Observation, error) {
	str, err := d.client.Get(fmt.Sprintf(PREDICTIONS_KEY_FORMAT, userID))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("predictions for user %s: %w", userID, dao.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get predictions from redis: %w", err)
	}
	var predictions []observation.Observation
	if err := decode(str, &predictions); err != nil {
		return nil, fmt.Errorf("failed to decode predictions JSON: %w", err)
	}
	return predictions, nil
}

func observationKey(userID string, date time.Time) string {
	return fmt.Sprintf(OBSERVATION_KEY_FORMAT, userID, observation.FormatDate(date))
}

func datesKey(userID string) string {
	return fmt.Sprintf(OBSERVATION_DATES_KEY_FORMAT, userID)
}

// dayScore is the number of days since the Unix epoch.
func dayScore(date time.Time) float64 {
	return float64(observation.DateOnly(date).Unix() / secondsPerDay)
}

func encode(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(snappy.Encode(nil, data)), nil
}

func decode(payload string, v interface{}) error {
	data, err := snappy.Decode(nil, []byte(payload))
	if err != nil {
		return fmt.Errorf("failed to decompress payload: %w", err)
	}
	return json.Unmarshal(data, v)
}
