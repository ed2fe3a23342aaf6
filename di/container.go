package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"cycle-server/config"
	"cycle-server/dao"
	"cycle-server/dao/redis"
	"cycle-server/dao/sqlite"
	"cycle-server/db"
	"cycle-server/server"
	"cycle-server/server/handlers"
	services "cycle-server/service"

	goredis "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Container holds all application dependencies.
type Container struct {
	Config                      *config.Config
	RedisClient                 db.RedisClient
	ObservationDao              dao.ObservationDAO
	CycleService                *services.CycleService
	CycleHandler                *handlers.CycleHandler
	MuxRouter                   *mux.Router
	Router                      *server.Router
	CycleHttpServer             *server.CycleHttpServer
	PredictionsRefresherService *services.PredictionsRefresherService

	closers []io.Closer
}

// NewContainer initializes and wires up all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Str("storage", cfg.Storage.Driver).Msg("[Container] Initializing container")
	c := &Container{Config: cfg}

	if err := c.initStorage(ctx); err != nil {
		c.Close()
		return nil, err
	}

	// Initialize service layer with store dependency
	c.CycleService = services.NewCycleService(c.ObservationDao, cfg.Statistics.LookbackDays, cfg.Statistics.MonthsToPredict)

	// Initialize cycle handler
	c.CycleHandler = handlers.NewCycleHandler(c.CycleService)

	// Initialize mux router
	c.MuxRouter = mux.NewRouter()

	// Initialize router
	c.Router = server.NewRouter(c.CycleHandler, c.MuxRouter)

	// Initialize cycle http server
	c.CycleHttpServer = server.NewCycleHttpServer(c.Router, c.MuxRouter,
		cfg.HTTP.Address, time.Duration(cfg.HTTP.ShutdownTimeoutSeconds)*time.Second)

	c.PredictionsRefresherService = services.NewPredictionsRefresherService(c.ObservationDao, c.CycleService)

	return c, nil
}

func (c *Container) initStorage(ctx context.Context) error {
	switch c.Config.Storage.Driver {
	case "sqlite":
		path := c.Config.Storage.SQLitePath
		sqliteDao, err := sqlite.NewSQLiteObservationDAO(ctx, path)
		if err != nil {
			return err
		}
		c.closers = append(c.closers, sqliteDao)
		c.ObservationDao = sqliteDao
		log.Info().Str("path", path).Msg("[Container] Using sqlite observation store")

	case "memory":
		c.RedisClient = db.NewMockRedisClient(ctx)
		c.ObservationDao = redis.NewRedisObservationDAO(c.RedisClient)
		log.Warn().Msg("[Container] Using in-memory observation store, data is lost on exit")

	default:
		redisInternalClient := goredis.NewClient(&goredis.Options{
			Addr:     c.Config.Redis.Address,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
		})
		c.closers = append(c.closers, redisInternalClient)

		redisClient := db.NewRedisStoreClient(ctx, redisInternalClient)
		if err := redisClient.Ping(); err != nil {
			return fmt.Errorf("failed to connect to Redis at %s: %w", c.Config.Redis.Address, err)
		}
		c.RedisClient = redisClient
		c.ObservationDao = redis.NewRedisObservationDAO(redisClient)
		log.Info().Str("address", c.Config.Redis.Address).Msg("[Container] Using redis observation store")
	}
	return nil
}

// Close releases the store connections.
func (c *Container) Close() {
	for _, closer := range c.closers {
		if err := closer.Close(); err != nil {
			log.Error().Err(err).Msg("[Container] Error closing resource")
		}
	}
	c.closers = nil
}
