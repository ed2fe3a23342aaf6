package main

import (
	"fmt"
	"os"

	"cycle-server/config"
	"cycle-server/util"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = config.NewViper()
	rootCmd = &cobra.Command{
		Use:   "cycle-server",
		Short: "Menstrual cycle statistics and prediction server",
		Long: `cycle-server stores daily cycle observations, derives cycle statistics from them
and predicts upcoming periods, ovulation and fertile windows.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, json or toml)")
	rootCmd.PersistentFlags().String("log-level", config.LOG_LEVEL, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.LOG_FORMAT, "log format (console, json)")

	// Bind flags to viper
	_ = v.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(statsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cfg is populated by initConfig before any command runs.
var cfg *config.Config

func initConfig(_ *cobra.Command, _ []string) error {
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if err := util.SetupLogger(cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}
