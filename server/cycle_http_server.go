package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type CycleHttpServer struct {
	router          *Router
	muxRouter       *mux.Router
	address         string
	shutdownTimeout time.Duration
}

func NewCycleHttpServer(router *Router, muxRouter *mux.Router, address string, shutdownTimeout time.Duration) *CycleHttpServer {
	return &CycleHttpServer{
		router:          router,
		muxRouter:       muxRouter,
		address:         address,
		shutdownTimeout: shutdownTimeout,
	}
}

// Start registers the routes and serves until SIGINT or SIGTERM, then shuts
// down gracefully.
func (s *CycleHttpServer) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-stop
		log.Info().Msg("[CycleHttpServer] Shutting down the server...")
		cancel()
	}()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled.
func (s *CycleHttpServer) Run(ctx context.Context) error {
	s.router.RegisterRoutes()

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.muxRouter,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", s.address).Msg("[CycleHttpServer] Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("[CycleHttpServer] Server forced to shutdown")
		return err
	}

	log.Info().Msg("[CycleHttpServer] Server exiting")
	return nil
}
