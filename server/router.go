package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

const USER_ROUTE_PREFIX = "/v1/users/{userId}"

// CycleRequestHandler is the set of endpoints the router exposes.
type CycleRequestHandler interface {
	ListObservations(w http.ResponseWriter, r *http.Request)
	GetObservation(w http.ResponseWriter, r *http.Request)
	PutObservation(w http.ResponseWriter, r *http.Request)
	DeleteObservation(w http.ResponseWriter, r *http.Request)
	GetStatistics(w http.ResponseWriter, r *http.Request)
	GetPredictions(w http.ResponseWriter, r *http.Request)
	GetCalendar(w http.ResponseWriter, r *http.Request)
	GetCalendarChart(w http.ResponseWriter, r *http.Request)
	Ping(w http.ResponseWriter, r *http.Request)
}

type Router struct {
	cycleHandler CycleRequestHandler
	router       *mux.Router
}

// NewRouter creates a router with the app's routes.
func NewRouter(
	cycleHandler CycleRequestHandler,
	router *mux.Router) *Router {
	return &Router{
		cycleHandler: cycleHandler,
		router:       router,
	}
}

func (r *Router) RegisterRoutes() {
	r.router.Use(corsMiddleware)

	// expects optional ?from={yyyy-mm-dd}&to={yyyy-mm-dd}
	r.router.HandleFunc(userRoute("/observations"), r.cycleHandler.ListObservations).Methods("GET", "OPTIONS")
	r.router.HandleFunc(userRoute("/observations/{date}"), r.cycleHandler.GetObservation).Methods("GET", "OPTIONS")
	r.router.HandleFunc(userRoute("/observations/{date}"), r.cycleHandler.PutObservation).Methods("PUT")
	r.router.HandleFunc(userRoute("/observations/{date}"), r.cycleHandler.DeleteObservation).Methods("DELETE")

	// expects optional ?now={yyyy-mm-dd}, and ?months={int} for predictions
	r.router.HandleFunc(userRoute("/cycle/statistics"), r.cycleHandler.GetStatistics).Methods("GET", "OPTIONS")
	r.router.HandleFunc(userRoute("/cycle/predictions"), r.cycleHandler.GetPredictions).Methods("GET", "OPTIONS")

	r.router.HandleFunc(userRoute("/calendar"), r.cycleHandler.GetCalendar).Methods("GET", "OPTIONS")
	r.router.HandleFunc(userRoute("/calendar/chart"), r.cycleHandler.GetCalendarChart).Methods("GET", "OPTIONS")

	r.router.HandleFunc("/ping", r.cycleHandler.Ping).Methods("GET")
}

// userRoute prefixes path with the per-user prefix. User routes stay on the
// root router: a subrouter answers 404 instead of 405 on a method mismatch.
func userRoute(path string) string {
	return USER_ROUTE_PREFIX + path
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
