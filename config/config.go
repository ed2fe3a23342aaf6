package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Redis Config
const REDIS_DB_ADDRESS = "redis:6379"
const REDIS_DB_PASSWORD = ""
const REDIS_DB = 0

// Storage: "redis", "sqlite" or "memory" (in-process, lost on exit)
const STORAGE_DRIVER = "redis"
const SQLITE_DB_PATH = "data/cycle.db"

// HTTP server
const HTTP_ADDRESS = ":8080"
const HTTP_SHUTDOWN_TIMEOUT_SECONDS = 5

// Predictions refresher config
const PREDICTIONS_REFRESHER_SCHEDULE_MINUTES = 60

// Cycle engine inputs
const STATISTICS_LOOKBACK_DAYS = 730
const MONTHS_TO_PREDICT = 3

// Logging
const LOG_LEVEL = "info"
const LOG_FORMAT = "console"

// Resources file paths
const RESOURCES_PATH_PREFIX = "resources"
const SEED_OBSERVATIONS_RESOURCE = "seed_observations.json"

const ENV_PREFIX = "CYCLE"

// Config is the resolved runtime configuration.
type Config struct {
	Storage struct {
		Driver     string `mapstructure:"driver"`
		SQLitePath string `mapstructure:"sqlite_path"`
	} `mapstructure:"storage"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	HTTP struct {
		Address                string `mapstructure:"address"`
		ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds"`
	} `mapstructure:"http"`

	Refresher struct {
		IntervalMinutes int `mapstructure:"interval_minutes"`
	} `mapstructure:"refresher"`

	Statistics struct {
		LookbackDays    int `mapstructure:"lookback_days"`
		MonthsToPredict int `mapstructure:"months_to_predict"`
	} `mapstructure:"statistics"`

	Logging struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"logging"`
}

// NewViper returns a viper instance preloaded with the package defaults and
// CYCLE_* environment overrides (e.g. CYCLE_REDIS_ADDRESS).
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("storage.driver", STORAGE_DRIVER)
	v.SetDefault("storage.sqlite_path", SQLITE_DB_PATH)
	v.SetDefault("redis.address", REDIS_DB_ADDRESS)
	v.SetDefault("redis.password", REDIS_DB_PASSWORD)
	v.SetDefault("redis.db", REDIS_DB)
	v.SetDefault("http.address", HTTP_ADDRESS)
	v.SetDefault("http.shutdown_timeout_seconds", HTTP_SHUTDOWN_TIMEOUT_SECONDS)
	v.SetDefault("refresher.interval_minutes", PREDICTIONS_REFRESHER_SCHEDULE_MINUTES)
	v.SetDefault("statistics.lookback_days", STATISTICS_LOOKBACK_DAYS)
	v.SetDefault("statistics.months_to_predict", MONTHS_TO_PREDICT)
	v.SetDefault("logging.level", LOG_LEVEL)
	v.SetDefault("logging.format", LOG_FORMAT)

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file at path (any format viper knows) on
// top of the defaults and environment, and validates the result.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %q: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "redis", "sqlite", "memory":
	default:
		return fmt.Errorf("invalid storage driver %q (want redis, sqlite or memory)", c.Storage.Driver)
	}
	if c.Refresher.IntervalMinutes <= 0 {
		return fmt.Errorf("refresher.interval_minutes must be positive, got %d", c.Refresher.IntervalMinutes)
	}
	if c.Statistics.LookbackDays <= 0 {
		return fmt.Errorf("statistics.lookback_days must be positive, got %d", c.Statistics.LookbackDays)
	}
	return nil
}

// BaseDir returns the absolute path of the project root directory
func BaseDir() string {
	// Check if PROJECT_ROOT is set
	if root := os.Getenv("PROJECT_ROOT"); root != "" {
		return root
	}

	// Default to the current working directory
	wd, err := os.Getwd()
	if err != nil {
		panic("Unable to determine working directory: " + err.Error())
	}

	return wd
}

func GetResourcePath(resourceFile string) string {
	return filepath.Join(BaseDir(), RESOURCES_PATH_PREFIX, resourceFile)
}
