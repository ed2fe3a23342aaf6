package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cycle-server/dao"
	"cycle-server/models/calendar"
	"cycle-server/models/observation"
	services "cycle-server/service"
	"cycle-server/util"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const (
	USER_ID_PATH_VAR = "userId"
	DATE_PATH_VAR    = "date"

	FROM_QUERY_ARG   = "from"
	TO_QUERY_ARG     = "to"
	NOW_QUERY_ARG    = "now"
	MONTHS_QUERY_ARG = "months"

	DEFAULT_OBSERVATIONS_WINDOW_DAYS = 90
	DEFAULT_CALENDAR_PAST_DAYS       = 30
	DEFAULT_CALENDAR_FUTURE_DAYS     = 90
)

// errBadRequest marks request parsing failures.
var errBadRequest = errors.New("bad request")

type CycleHandler struct {
	cycleService *services.CycleService
}

func NewCycleHandler(cycleService *services.CycleService) *CycleHandler {
	return &CycleHandler{cycleService: cycleService}
}

// ListObservations handles GET /v1/users/{userId}/observations?from=&to=
func (h *CycleHandler) ListObservations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)[USER_ID_PATH_VAR]
	now, err := h.parseNow(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	from, to, err := parseRange(r.URL.Query(), now.AddDate(0, 0, -DEFAULT_OBSERVATIONS_WINDOW_DAYS), now)
	if err != nil {
		writeError(w, err)
		return
	}

	obs, err := h.cycleService.ListObservations(userID, from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

// GetObservation handles GET /v1/users/{userId}/observations/{date}
func (h *CycleHandler) GetObservation(w http.ResponseWriter, r *http.Request) {
	userID, date, err := parsePathDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	o, err := h.cycleService.GetObservation(userID, date)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// PutObservation handles PUT /v1/users/{userId}/observations/{date}. The
// date in the path wins over any date in the body.
func (h *CycleHandler) PutObservation(w http.ResponseWriter, r *http.Request) {
	userID, date, err := parsePathDate(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var o observation.Observation
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		writeError(w, fmt.Errorf("%w: invalid observation body: %v", errBadRequest, err))
		return
	}
	o.Date = date

	stored, err := h.cycleService.LogObservation(userID, o)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// DeleteObservation handles DELETE /v1/users/{userId}/observations/{date}
func (h *CycleHandler) DeleteObservation(w http.ResponseWriter, r *http.Request) {
	userID, date, err := parsePathDate(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.cycleService.DeleteObservation(userID, date); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStatistics handles GET /v1/users/{userId}/cycle/statistics?now=
func (h *CycleHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)[USER_ID_PATH_VAR]
	now, err := h.parseNow(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	stats, err := h.cycleService.GetStatistics(userID, now)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// GetPredictions handles GET /v1/users/{userId}/cycle/predictions?months=&now=
// Without either argument it answers from the prediction cache.
func (h *CycleHandler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)[USER_ID_PATH_VAR]
	vals := r.URL.Query()
	now, err := h.parseNow(vals)
	if err != nil {
		writeError(w, err)
		return
	}
	months := 0
	if s := vals.Get(MONTHS_QUERY_ARG); s != "" {
		months, err = strconv.Atoi(s)
		if err != nil || months < 0 {
			writeError(w, fmt.Errorf("%w: invalid argument %s", errBadRequest, MONTHS_QUERY_ARG))
			return
		}
	}

	var preds []observation.Observation
	if vals.Get(NOW_QUERY_ARG) == "" && months == 0 {
		preds, err = h.cycleService.GetCachedPredictions(userID)
	} else {
		preds, err = h.cycleService.GetPredictions(userID, months, now)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preds)
}

// GetCalendar handles GET /v1/users/{userId}/calendar?from=&to=&now=
func (h *CycleHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)[USER_ID_PATH_VAR]
	days, err := h.loadCalendar(userID, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// GetCalendarChart handles GET /v1/users/{userId}/calendar/chart and renders
// the same merged calendar as an HTML bar chart.
func (h *CycleHandler) GetCalendarChart(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)[USER_ID_PATH_VAR]
	days, err := h.loadCalendar(userID, r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := util.RenderCalendarChart(&buf, days, "Cycle calendar for "+userID); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Msg("[CycleHandler] Error writing chart")
	}
}

// Ping handles GET /ping
func (h *CycleHandler) Ping(w http.ResponseWriter, r *http.Request) {
	log.Debug().Msg("[CycleHandler] Pinging server")
	writeJSON(w, http.StatusOK, map[string]string{"status": "pong"})
}

func (h *CycleHandler) loadCalendar(userID string, vals url.Values) ([]calendar.CalendarDay, error) {
	now, err := h.parseNow(vals)
	if err != nil {
		return nil, err
	}
	from, to, err := parseRange(vals,
		now.AddDate(0, 0, -DEFAULT_CALENDAR_PAST_DAYS),
		now.AddDate(0, 0, DEFAULT_CALENDAR_FUTURE_DAYS))
	if err != nil {
		return nil, err
	}
	return h.cycleService.GetCalendar(userID, from, to, now)
}

func (h *CycleHandler) parseNow(vals url.Values) (time.Time, error) {
	s := vals.Get(NOW_QUERY_ARG)
	if s == "" {
		return observation.DateOnly(h.cycleService.Now()), nil
	}
	return parseArgDate(s, NOW_QUERY_ARG)
}

func parseRange(vals url.Values, defaultFrom, defaultTo time.Time) (from, to time.Time, err error) {
	from, to = defaultFrom, defaultTo
	if s := vals.Get(FROM_QUERY_ARG); s != "" {
		if from, err = parseArgDate(s, FROM_QUERY_ARG); err != nil {
			return
		}
	}
	if s := vals.Get(TO_QUERY_ARG); s != "" {
		if to, err = parseArgDate(s, TO_QUERY_ARG); err != nil {
			return
		}
	}
	return
}

func parsePathDate(r *http.Request) (string, time.Time, error) {
	vars := mux.Vars(r)
	date, err := parseArgDate(vars[DATE_PATH_VAR], DATE_PATH_VAR)
	return vars[USER_ID_PATH_VAR], date, err
}

func parseArgDate(s, name string) (time.Time, error) {
	d, err := observation.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid argument %s", errBadRequest, name)
	}
	return d, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, observation.ErrInvalidObservation),
		errors.Is(err, services.ErrPredictionInput),
		errors.Is(err, services.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, dao.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("[CycleHandler] Request failed")
		msg = "Internal server error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("[CycleHandler] Error encoding response")
	}
}
