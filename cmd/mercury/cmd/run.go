package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mercurytrader/mercury/broker"
	_ "github.com/mercurytrader/mercury/broker/sim" // registers the sim venue
	"github.com/mercurytrader/mercury/engine"
	"github.com/mercurytrader/mercury/market"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a strategy live against the configured venue",
	Long: `Run starts the live loop: tick the strategy on the latest closed candle,
sleep to the next timeframe boundary, pull the fresh candle in, repeat.
The session ends on SIGINT/SIGTERM or on a fatal venue error.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	logic, err := strategyFromConfig(cfg)
	if err != nil {
		return err
	}
	rec, err := journalFromConfig(cfg)
	if err != nil {
		return err
	}
	defer rec.Close()

	venue, err := broker.OpenVenue(cfg.Venue.Name, cfg.Venue.Credentials)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw, err := broker.Dial(ctx, venue,
		broker.WithLogger(log.Named("gateway")),
		broker.WithRecorder(rec),
		broker.WithAccountID(cfg.Venue.AccountID))
	if err != nil {
		return err
	}

	tf, err := market.ParseTimeframe(cfg.Session.Timeframe)
	if err != nil {
		return err
	}
	offset, err := cfg.Session.ParseOffset()
	if err != nil {
		return err
	}

	opts := []engine.Option{engine.WithLogger(log.Named("engine"))}
	if offset > 0 {
		opts = append(opts, engine.WithOffset(offset))
	}

	e := engine.New(gw, logic, opts...)
	err = e.Start(ctx, cfg.Session.Instrument, tf, cfg.Session.Warmup)
	if errors.Is(err, context.Canceled) {
		fmt.Println("session stopped")
		return nil
	}
	return err
}
