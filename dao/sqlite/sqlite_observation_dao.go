package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"cycle-server/dao"
	"cycle-server/models/observation"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/rs/zerolog/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS observations (
	id           TEXT NOT NULL,
	user_id      TEXT NOT NULL,
	date         TEXT NOT NULL,
	is_period    INTEGER NOT NULL DEFAULT 0,
	is_ovulation INTEGER NOT NULL DEFAULT 0,
	is_fertile   INTEGER NOT NULL DEFAULT 0,
	flow         TEXT NOT NULL DEFAULT '',
	symptoms     TEXT NOT NULL DEFAULT '[]',
	notes        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (user_id, date)
);

CREATE TABLE IF NOT EXISTS predictions (
	user_id    TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`

// SQLiteObservationDAO stores observations in a relational table keyed by
// (user_id, date).
type SQLiteObservationDAO struct {
	db  *sql.DB
	ctx context.Context
}

var _ dao.ObservationDAO = (*SQLiteObservationDAO)(nil)

// NewSQLiteObservationDAO opens (creating if needed) the database at dbPath
// and applies the schema. Use ":memory:" for a throwaway store.
func NewSQLiteObservationDAO(ctx context.Context, dbPath string) (*SQLiteObservationDAO, error) {
	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps an in-memory database alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLiteObservationDAO{db: db, ctx: ctx}, nil
}

// Close closes the database connection.
func (s *SQLiteObservationDAO) Close() error {
	return s.db.Close()
}

func (s *SQLiteObservationDAO) UpsertObservation(userID string, o observation.Observation) (observation.Observation, error) {
	o.Normalize()
	if o.ID == "" {
		existing, err := s.GetObservation(userID, o.Date)
		switch {
		case err == nil:
			o.ID = existing.ID
		case errors.Is(err, dao.ErrNotFound):
			o.ID = uuid.NewString()
		default:
			return observation.Observation{}, err
		}
	}

	symptoms, err := json.Marshal(symptomsOrEmpty(o.Symptoms))
	if err != nil {
		return observation.Observation{}, fmt.Errorf("failed to marshal symptoms: %w", err)
	}

	_, err = s.db.ExecContext(s.ctx, `
		INSERT INTO observations (id, user_id, date, is_period, is_ovulation, is_fertile, flow, symptoms, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, date) DO UPDATE SET
			id = excluded.id,
			is_period = excluded.is_period,
			is_ovulation = excluded.is_ovulation,
			is_fertile = excluded.is_fertile,
			flow = excluded.flow,
			symptoms = excluded.symptoms,
			notes = excluded.notes`,
		o.ID, userID, observation.FormatDate(o.Date), o.IsPeriod, o.IsOvulation, o.IsFertile,
		string(o.Flow), string(symptoms), o.Notes,
	)
	if err != nil {
		return observation.Observation{}, fmt.Errorf("failed to upsert observation: %w", err)
	}

	log.Debug().Str("user_id", userID).Str("date", observation.FormatDate(o.Date)).Msg("[SQLiteObservationDAO] Upserted observation")
	return o, nil
}

func (s *SQLiteObservationDAO) GetObservation(userID string, date time.Time) (*observation.Observation, error) {
	row := s.db.QueryRowContext(s.ctx, `
		SELECT id, date, is_period, is_ovulation, is_fertile, flow, symptoms, notes
		FROM observations WHERE user_id = ? AND date = ?`,
		userID, observation.FormatDate(date),
	)
	o, err := scanObservation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("observation %s for user %s: %w", observation.FormatDate(date), userID, dao.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *SQLiteObservationDAO) DeleteObservation(userID string, date time.Time) error {
	res, err := s.db.ExecContext(s.ctx, `DELETE FROM observations WHERE user_id = ? AND date = ?`,
		userID, observation.FormatDate(date))
	if err != nil {
		return fmt.Errorf("failed to delete observation: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("observation %s for user %s: %w", observation.FormatDate(date), userID, dao.ErrNotFound)
	}
	return nil
}

// GetObservationsInRange relies on the ISO date text sorting chronologically.
func (s *SQLiteObservationDAO) GetObservationsInRange(userID string, from, to time.Time) ([]observation.Observation, error) {
	rows, err := s.db.QueryContext(s.ctx, `
		SELECT id, date, is_period, is_ovulation, is_fertile, flow, symptoms, notes
		FROM observations
		WHERE user_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC`,
		userID, observation.FormatDate(from), observation.FormatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	out := []observation.Observation{}
	for rows.Next() {
		o, err := scanObservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate observations: %w", err)
	}
	return out, nil
}

func (s *SQLiteObservationDAO) ListUserIDs() ([]string, error) {
	rows, err := s.db.QueryContext(s.ctx, `SELECT DISTINCT user_id FROM observations ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteObservationDAO) SetPredictions(userID string, predictions []observation.Observation) error {
	payload, err := json.Marshal(predictions)
	if err != nil {
		return fmt.Errorf("failed to marshal predictions for user %s: %w", userID, err)
	}
	_, err = s.db.ExecContext(s.ctx, `
		INSERT INTO predictions (user_id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		userID, string(payload), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to store predictions: %w", err)
	}
	return nil
}

func (s *SQLiteObservationDAO) GetPredictions(userID string) ([]observation.Observation, error) {
	var payload string
	err := s.db.QueryRowContext(s.ctx, `SELECT payload FROM predictions WHERE user_id = ?`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("predictions for user %s: %w", userID, dao.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load predictions: %w", err)
	}
	var predictions []observation.Observation
	if err := json.Unmarshal([]byte(payload), &predictions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal predictions: %w", err)
	}
	return predictions, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanObservation(row scanner) (observation.Observation, error) {
	var (
		o        observation.Observation
		date     string
		flow     string
		symptoms string
	)
	if err := row.Scan(&o.ID, &date, &o.IsPeriod, &o.IsOvulation, &o.IsFertile, &flow, &symptoms, &o.Notes); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return o, err
		}
		return o, fmt.Errorf("failed to scan observation: %w", err)
	}

	d, err := observation.ParseDate(date)
	if err != nil {
		return o, fmt.Errorf("failed to parse stored date %q: %w", date, err)
	}
	o.Date = d
	o.Flow = observation.Flow(flow)
	if err := json.Unmarshal([]byte(symptoms), &o.Symptoms); err != nil {
		return o, fmt.Errorf("failed to unmarshal symptoms: %w", err)
	}
	o.Symptoms = observation.NormalizeSymptoms(o.Symptoms)
	return o, nil
}

func symptomsOrEmpty(symptoms []string) []string {
	if symptoms == nil {
		return []string{}
	}
	return symptoms
}
