package cmd

import (
	"fmt"
	"strings"

	"github.com/mercurytrader/mercury/config"
	"github.com/mercurytrader/mercury/journal"
	"github.com/mercurytrader/mercury/strategy"
)

func strategyFromConfig(cfg *config.Config) (strategy.Strategy, error) {
	sc := cfg.Strategy
	switch strings.ToLower(strings.TrimSpace(sc.Name)) {
	case "sma-cross", "smacross":
		s := strategy.NewSMACross(sc.Size)
		if sc.Fast > 0 {
			s.Fast = sc.Fast
		}
		if sc.Slow > 0 {
			s.Slow = sc.Slow
		}
		return s, nil
	case "ema-cross", "emacross":
		s := strategy.NewEMACross(sc.Size)
		if sc.Fast > 0 {
			s.Fast = sc.Fast
		}
		if sc.Slow > 0 {
			s.Slow = sc.Slow
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: sma-cross, ema-cross)", sc.Name)
	}
}

func journalFromConfig(cfg *config.Config) (journal.Journal, error) {
	jc := cfg.Journal
	switch jc.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "csv":
		return journal.NewCSV(jc.OrdersFile, jc.PositionsFile)
	default:
		return nil, fmt.Errorf("unknown journal type %q", jc.Type)
	}
}
