package cycleapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cycle-server/api"
	redisdao "cycle-server/dao/redis"
	"cycle-server/db"
	"cycle-server/models/calendar"
	"cycle-server/models/observation"
	"cycle-server/server"
	"cycle-server/server/handlers"
	services "cycle-server/service"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, _ := observation.ParseDate(s)
	return d
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := redisdao.NewRedisObservationDAO(db.NewMockRedisClient(context.Background()))
	cs := services.NewCycleService(store, 730, 3).
		WithClock(func() time.Time { return day("2024-03-10") })
	muxRouter := mux.NewRouter()
	server.NewRouter(handlers.NewCycleHandler(cs), muxRouter).RegisterRoutes()

	ts := httptest.NewServer(muxRouter)
	t.Cleanup(ts.Close)
	return ts
}

func putPeriod(t *testing.T, c CycleAPI, user string, dates ...string) {
	t.Helper()
	for _, d := range dates {
		_, err := c.PutObservation(user, observation.Observation{Date: day(d), IsPeriod: true})
		require.NoError(t, err)
	}
}

func clients(t *testing.T) map[string]CycleAPI {
	path := filepath.Join(t.TempDir(), "observations.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0600))
	fileClient, err := NewCycleFileClient(path)
	require.NoError(t, err)

	return map[string]CycleAPI{
		"http": NewCycleApiClient(api.NewHTTPClient(newTestServer(t).URL)),
		"file": fileClient,
	}
}

func TestCycleAPI_RoundTrip(t *testing.T) {
	for name, c := range clients(t) {
		t.Run(name, func(t *testing.T) {
			stored, err := c.PutObservation("u1", observation.Observation{
				Date: day("2024-03-01"), IsPeriod: true, Flow: observation.FlowHeavy, Symptoms: []string{"Cramps"},
			})
			require.NoError(t, err)
			assert.Equal(t, []string{"cramps"}, stored.Symptoms)
			putPeriod(t, c, "u1", "2024-03-02", "2024-03-03", "2024-03-04")

			obs, err := c.GetObservations("u1", day("2024-03-01"), day("2024-03-02"))
			require.NoError(t, err)
			assert.Len(t, obs, 2)

			stats, err := c.GetStatistics("u1", day("2024-03-10"))
			require.NoError(t, err)
			assert.Equal(t, 28, stats.AverageCycleLength)
			assert.Equal(t, 4, stats.AveragePeriodLength)
			require.NotNil(t, stats.NextPeriodStartDate)
			assert.Equal(t, "2024-03-29", observation.FormatDate(*stats.NextPeriodStartDate))

			preds, err := c.GetPredictions("u1", 1, day("2024-03-10"))
			require.NoError(t, err)
			require.Len(t, preds, 11)
			assert.Equal(t, "2024-04-12", observation.FormatDate(preds[4].Date))
			assert.True(t, preds[4].IsOvulation)

			days, err := c.GetCalendar("u1", day("2024-04-10"), day("2024-04-14"), day("2024-03-10"))
			require.NoError(t, err)
			require.Len(t, days, 5)
			assert.Equal(t, day("2024-04-12"), days[2].Date)
			assert.Equal(t, calendar.CategoryOvulation, days[2].Category)
			assert.Equal(t, calendar.CategoryNone, days[4].Category)
		})
	}
}

func TestCycleApiClient_ErrorStatus(t *testing.T) {
	c := NewCycleApiClient(api.NewHTTPClient(newTestServer(t).URL))

	_, err := c.GetCalendar("u1", day("2024-04-10"), day("2024-03-10"), time.Time{})

	var statusErr *api.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestCycleFileClient_RejectsPredictions(t *testing.T) {
	c := &CycleFileClient{}

	_, err := c.PutObservation("", observation.Observation{Date: day("2024-03-01"), IsPrediction: true})

	assert.True(t, errors.Is(err, services.ErrPredictionInput))
}

func TestNewCycleFileClient_MissingFile(t *testing.T) {
	_, err := NewCycleFileClient(filepath.Join(t.TempDir(), "missing.json"))

	assert.Error(t, err)
}
