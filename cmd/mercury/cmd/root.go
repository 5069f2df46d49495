package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mercurytrader/mercury/config"
)

var rootCmd = &cobra.Command{
	Use:   "mercury",
	Short: "A candle-driven trading strategy runtime",
	Long: `Mercury runs trading strategies against candle series, live or replayed.

It provides:
  - A fixed-cadence live loop that ticks a strategy once per closed candle
  - Full-speed backtests over historical or synthetic data
  - Lookahead-safe indicator windows (strategies never see future candles)
  - A sqlite/csv journal of submitted orders and closed positions`,
	SilenceUsage: true,
}

var (
	cfgPath  string
	logLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgPath)
}

func newLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", logLevel, err)
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
