package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mercurytrader/mercury/broker"
	"github.com/mercurytrader/mercury/broker/sim"
	"github.com/mercurytrader/mercury/datasource"
	"github.com/mercurytrader/mercury/engine"
	"github.com/mercurytrader/mercury/market"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Replay a strategy over a historical window at full speed",
	Long: `Backtest replays the configured strategy against the sim venue over the
window from the config's simulation section. Candles come from the seeded
synthetic vendor, so runs are reproducible.

Example:
  mercury backtest -c config.yaml --from 2024-01-01T00:00:00Z --to 2024-03-01T00:00:00Z`,
	RunE: runBacktest,
}

var (
	btFrom string
	btTo   string
	btSeed int64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVar(&btFrom, "from", "", "window start (RFC 3339, overrides config)")
	backtestCmd.Flags().StringVar(&btTo, "to", "", "window end (RFC 3339, overrides config)")
	backtestCmd.Flags().Int64Var(&btSeed, "seed", 0, "synthetic data seed (overrides config)")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if btFrom != "" {
		cfg.Simulation.From = btFrom
	}
	if btTo != "" {
		cfg.Simulation.To = btTo
	}
	if btSeed != 0 {
		cfg.Simulation.Seed = btSeed
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

	from, to, err := cfg.Simulation.Window()
	if err != nil {
		return err
	}
	tf, err := market.ParseTimeframe(cfg.Session.Timeframe)
	if err != nil {
		return err
	}

	venue := sim.New(sim.Config{
		AccountID: cfg.Venue.AccountID,
		Balance:   decimal.NewFromFloat(cfg.Simulation.Balance),
		Spread:    cfg.Simulation.Spread,
		Vendor:    datasource.NewSynthetic(cfg.Simulation.Seed),
		Logger:    log.Named("sim"),
	})

	ctx := context.Background()
	gw, err := broker.Dial(ctx, venue,
		broker.WithLogger(log.Named("gateway")),
		broker.WithRecorder(rec))
	if err != nil {
		return err
	}

	fmt.Printf("Backtesting %s on %s/%s, %s .. %s (seed %d)\n",
		cfg.Strategy.Name, cfg.Session.Instrument, tf,
		from.Format(time.DateOnly), to.Format(time.DateOnly),
		cfg.Simulation.Seed)

	var bar *progressbar.ProgressBar
	s := engine.NewSimulator(gw, logic,
		engine.WithSimLogger(log.Named("simulator")),
		engine.WithProgress(func(done, total int) {
			if bar == nil {
				bar = progressbar.Default(int64(total), "replaying")
			}
			_ = bar.Set(done)
		}))

	result, err := s.Run(ctx, cfg.Session.Instrument, tf, from, to, cfg.Session.Warmup)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}

	printResult(result)
	return nil
}

func printResult(r engine.Result) {
	fmt.Printf("\nBacktest complete: %s .. %s\n",
		r.Start.Format(time.RFC3339), r.End.Format(time.RFC3339))
	fmt.Printf("  Ticks:   %d\n", r.Ticks)
	fmt.Printf("  Trades:  %d (%d won, %d lost)\n", r.Trades, r.Wins, r.Losses)
	fmt.Printf("  PnL:     %s\n", r.GrossPnL.StringFixed(2))
	fmt.Printf("  Balance: %s\n", r.Balance.StringFixed(2))
}
