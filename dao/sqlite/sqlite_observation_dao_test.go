package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"cycle-server/dao"
	"cycle-server/models/observation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDAO(t *testing.T) *SQLiteObservationDAO {
	t.Helper()
	d, err := NewSQLiteObservationDAO(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func date(s string) time.Time {
	d, _ := observation.ParseDate(s)
	return d
}

func TestSQLiteObservationDAO_UpsertAndGet(t *testing.T) {
	d := newTestDAO(t)

	stored, err := d.UpsertObservation("user-1", observation.Observation{
		Date:     date("2024-03-01"),
		IsPeriod: true,
		Flow:     observation.FlowMedium,
		Symptoms: []string{"Bloating", "cramps"},
		Notes:    "day one",
	})
	require.NoError(t, err)

	got, err := d.GetObservation("user-1", date("2024-03-01"))
	require.NoError(t, err)
	assert.Equal(t, stored, *got)
	assert.Equal(t, []string{"bloating", "cramps"}, got.Symptoms)
}

func TestSQLiteObservationDAO_UpsertReplacesSameDate(t *testing.T) {
	d := newTestDAO(t)

	first, err := d.UpsertObservation("user-1", observation.Observation{Date: date("2024-03-01"), IsPeriod: true})
	require.NoError(t, err)
	_, err = d.UpsertObservation("user-1", observation.Observation{Date: date("2024-03-01"), IsFertile: true})
	require.NoError(t, err)

	all, err := d.GetObservationsInRange("user-1", date("2024-03-01"), date("2024-03-01"))
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)
	assert.False(t, all[0].IsPeriod)
	assert.True(t, all[0].IsFertile)
}

func TestSQLiteObservationDAO_RangeAndUsers(t *testing.T) {
	d := newTestDAO(t)
	for _, s := range []string{"2024-03-10", "2024-02-01", "2024-03-01"} {
		_, err := d.UpsertObservation("user-1", observation.Observation{Date: date(s), IsPeriod: true})
		require.NoError(t, err)
	}
	_, err := d.UpsertObservation("user-0", observation.Observation{Date: date("2024-03-05")})
	require.NoError(t, err)

	got, err := d.GetObservationsInRange("user-1", date("2024-02-15"), date("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, date("2024-03-01"), got[0].Date)
	assert.Equal(t, date("2024-03-10"), got[1].Date)

	ids, err := d.ListUserIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"user-0", "user-1"}, ids)
}

func TestSQLiteObservationDAO_Delete(t *testing.T) {
	d := newTestDAO(t)
	_, err := d.UpsertObservation("user-1", observation.Observation{Date: date("2024-03-01")})
	require.NoError(t, err)

	require.NoError(t, d.DeleteObservation("user-1", date("2024-03-01")))

	_, err = d.GetObservation("user-1", date("2024-03-01"))
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	assert.True(t, errors.Is(d.DeleteObservation("user-1", date("2024-03-01")), dao.ErrNotFound))
}

func TestSQLiteObservationDAO_Predictions(t *testing.T) {
	d := newTestDAO(t)

	_, err := d.GetPredictions("user-1")
	assert.True(t, errors.Is(err, dao.ErrNotFound))

	preds := []observation.Observation{
		{Date: date("2024-04-07"), IsFertile: true, Notes: "Fertile window", IsPrediction: true},
	}
	require.NoError(t, d.SetPredictions("user-1", preds))
	require.NoError(t, d.SetPredictions("user-1", preds))

	got, err := d.GetPredictions("user-1")
	require.NoError(t, err)
	assert.Equal(t, preds, got)
}
