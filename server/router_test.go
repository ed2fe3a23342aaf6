package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

// MockCycleHandler answers every endpoint with its own name.
type MockCycleHandler struct{}

func respond(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(name + ":" + mux.Vars(r)["userId"] + ":" + mux.Vars(r)["date"]))
	}
}

func (h *MockCycleHandler) ListObservations(w http.ResponseWriter, r *http.Request) {
	respond("list")(w, r)
}
func (h *MockCycleHandler) GetObservation(w http.ResponseWriter, r *http.Request) {
	respond("get")(w, r)
}
func (h *MockCycleHandler) PutObservation(w http.ResponseWriter, r *http.Request) {
	respond("put")(w, r)
}
func (h *MockCycleHandler) DeleteObservation(w http.ResponseWriter, r *http.Request) {
	respond("delete")(w, r)
}
func (h *MockCycleHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	respond("statistics")(w, r)
}
func (h *MockCycleHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	respond("predictions")(w, r)
}
func (h *MockCycleHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	respond("calendar")(w, r)
}
func (h *MockCycleHandler) GetCalendarChart(w http.ResponseWriter, r *http.Request) {
	respond("chart")(w, r)
}
func (h *MockCycleHandler) Ping(w http.ResponseWriter, r *http.Request) {
	respond("ping")(w, r)
}

func TestRouter_RegisterRoutes(t *testing.T) {
	// Setup
	router := mux.NewRouter()
	appRouter := NewRouter(&MockCycleHandler{}, router)
	appRouter.RegisterRoutes()

	// Test Cases
	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
		response   string
	}{
		{"List Observations", "GET", "/v1/users/u1/observations", http.StatusOK, "list:u1:"},
		{"Get Observation", "GET", "/v1/users/u1/observations/2024-03-01", http.StatusOK, "get:u1:2024-03-01"},
		{"Put Observation", "PUT", "/v1/users/u1/observations/2024-03-01", http.StatusOK, "put:u1:2024-03-01"},
		{"Delete Observation", "DELETE", "/v1/users/u1/observations/2024-03-01", http.StatusOK, "delete:u1:2024-03-01"},
		{"Statistics", "GET", "/v1/users/u1/cycle/statistics", http.StatusOK, "statistics:u1:"},
		{"Predictions", "GET", "/v1/users/u1/cycle/predictions?months=2", http.StatusOK, "predictions:u1:"},
		{"Calendar", "GET", "/v1/users/u1/calendar", http.StatusOK, "calendar:u1:"},
		{"Calendar Chart", "GET", "/v1/users/u1/calendar/chart", http.StatusOK, "chart:u1:"},
		{"Ping Route", "GET", "/ping", http.StatusOK, "ping::"},
		{"Preflight", "OPTIONS", "/v1/users/u1/observations/2024-03-01", http.StatusOK, ""},
		{"Wrong Method", "POST", "/v1/users/u1/cycle/statistics", http.StatusMethodNotAllowed, ""},
		{"Invalid Route", "GET", "/invalid", http.StatusNotFound, ""},
	}

	// Run tests
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(test.method, test.path, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			assert.Equal(t, test.statusCode, rr.Code)
			if test.response != "" {
				assert.Equal(t, test.response, rr.Body.String())
			}
		})
	}
}

func TestRouter_CORSHeaders(t *testing.T) {
	router := mux.NewRouter()
	NewRouter(&MockCycleHandler{}, router).RegisterRoutes()

	req := httptest.NewRequest("GET", "/v1/users/u1/calendar", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PUT")
}
