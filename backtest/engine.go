package backtest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run walks the bar series once and simulates the strategy: at most one
// open position, exits evaluated before entries, entries triggered only by
// the previous bar's signal. Same bars + same config always produce the
// same trade log and equity curve.
func Run(bars []Bar, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validateBars(bars); err != nil {
		return nil, err
	}

	prices := make([]float64, len(bars))
	spreads := make([]float64, len(bars))
	for i, b := range bars {
		prices[i] = b.Price
		spreads[i] = b.LeadSpread
	}
	priceATR := RollingTrueRangeMean(prices, cfg.PriceATRWindow)
	spreadMA := SimpleMovingAverage(spreads, cfg.SpreadMAWindow)
	signals := GenerateSignals(bars, cfg)

	capital := cfg.InitialCapital
	equity := make([]float64, 0, len(bars)+1)
	equity = append(equity, capital)

	trades := []Trade{}
	var pos *position

	for i, bar := range bars {
		exitedThisBar := false

		if pos != nil {
			if bar.HasBasis {
				pos.basisHistory = append(pos.basisHistory, bar.Basis)
			}
			holding := holdingDays(pos.entryDate, bar.Date)
			unrealized := pos.unrealized(bar.Price, cfg.ContractMultiplier)
			unrealizedPct := unrealized / pos.committedMargin * 100

			if reason, hit := exitCheck(pos, bar, spreadMA[i], holding, unrealizedPct, cfg); hit {
				commission := commissionFor(pos, bar.Price, cfg)
				pnl := unrealized - commission
				capital += pnl
				trades = append(trades, closeTrade(pos, bar, pnl, commission, holding, reason))
				pos = nil
				exitedThisBar = true
			}
		}

		// An exit never chains into an entry on the same bar; a fresh entry
		// only ever consumes yesterday's signal.
		if pos == nil && !exitedThisBar && i > 0 {
			sig := signals[i-1]
			if sig.Long || sig.Short {
				contracts, committed := sizeContracts(capital, bar.Price, bar.HasMargin, bar.Margin, cfg)
				if contracts >= 1 {
					side := SideLong
					stop := bar.Price - cfg.ATRStopMultiplier*priceATR[i]
					if sig.Short {
						side = SideShort
						stop = bar.Price + cfg.ATRStopMultiplier*priceATR[i]
					}
					pos = &position{
						side:            side,
						entryDate:       bar.Date,
						entryPrice:      bar.Price,
						entrySpread:     bar.LeadSpread,
						stopPrice:       stop,
						contracts:       contracts,
						committedMargin: committed,
					}
					if bar.HasBasis {
						pos.basisHistory = append(pos.basisHistory, bar.Basis)
					}
				}
			}
		}

		// Mark to market. Commission is deferred to realization.
		e := capital
		if pos != nil {
			e += pos.unrealized(bar.Price, cfg.ContractMultiplier)
		}
		equity = append(equity, e)
	}

	// Data ran out with a position still open: force-close at the last price.
	if pos != nil {
		last := bars[len(bars)-1]
		holding := holdingDays(pos.entryDate, last.Date)
		commission := commissionFor(pos, last.Price, cfg)
		pnl := pos.unrealized(last.Price, cfg.ContractMultiplier) - commission
		capital += pnl
		trades = append(trades, closeTrade(pos, last, pnl, commission, holding, ExitEndOfData))
		pos = nil
	}

	return &Result{
		RunID:       uuid.NewString(),
		Trades:      trades,
		EquityCurve: equity,
		Metrics:     ComputeMetrics(equity, trades, cfg.TradingDaysPerYear),
	}, nil
}

func validateBars(bars []Bar) error {
	if len(bars) == 0 {
		return fmt.Errorf("bars: empty series")
	}
	for i, b := range bars {
		if b.Price <= 0 {
			return fmt.Errorf("bars: non-positive price %.4f at %s", b.Price, b.Date.Format("2006-01-02"))
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("bars: dates not strictly ascending at %s", b.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// exitCheck evaluates the exit conditions in their fixed priority order;
// the first condition that fires wins.
func exitCheck(p *position, bar Bar, spreadMA float64, holding int, unrealizedPct float64, cfg Config) (ExitReason, bool) {
	if holding >= cfg.HoldingPeriod {
		return ExitHoldingPeriod, true
	}
	if p.side == SideLong && bar.Price < p.stopPrice {
		return ExitPriceStop, true
	}
	if p.side == SideShort && bar.Price > p.stopPrice {
		return ExitPriceStop, true
	}
	if cfg.EnableSpreadMAStop {
		// The spread trend turned against the position.
		if p.side == SideLong && bar.LeadSpread < spreadMA {
			return ExitSpreadMAStop, true
		}
		if p.side == SideShort && bar.LeadSpread > spreadMA {
			return ExitSpreadMAStop, true
		}
	}
	if cfg.EnableBasisTakeProfit &&
		holding >= cfg.BasisMinHoldingDays &&
		unrealizedPct > cfg.BasisTPThresholdPct &&
		bar.HasBasis &&
		len(p.basisHistory) >= cfg.BasisDeclineDays {
		run := p.basisHistory[len(p.basisHistory)-cfg.BasisDeclineDays:]
		if p.side == SideLong && strictlyDecreasing(run) {
			return ExitBasisTakeProfit, true
		}
		if p.side == SideShort && strictlyIncreasing(run) {
			return ExitBasisTakeProfit, true
		}
	}
	return "", false
}

func strictlyDecreasing(vals []float64) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] >= vals[i-1] {
			return false
		}
	}
	return true
}

func strictlyIncreasing(vals []float64) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] <= vals[i-1] {
			return false
		}
	}
	return true
}

// commissionFor charges the round trip: a fixed amount per contract per side,
// or a rate on the entry plus exit notional.
func commissionFor(p *position, exitPrice float64, cfg Config) float64 {
	if cfg.CommissionMode == "per_contract" {
		return cfg.CommissionPerContract * float64(p.contracts) * 2
	}
	entryNotional := p.entryPrice * float64(p.contracts) * cfg.ContractMultiplier
	exitNotional := exitPrice * float64(p.contracts) * cfg.ContractMultiplier
	return (entryNotional + exitNotional) * cfg.CommissionRate
}

func closeTrade(p *position, bar Bar, pnl, commission float64, holding int, reason ExitReason) Trade {
	pct := 0.0
	if p.committedMargin > 0 {
		pct = pnl / p.committedMargin * 100
	}
	return Trade{
		Side:        p.side,
		EntryDate:   p.entryDate.Format("2006-01-02"),
		EntryPrice:  p.entryPrice,
		ExitDate:    bar.Date.Format("2006-01-02"),
		ExitPrice:   bar.Price,
		Contracts:   p.contracts,
		PnL:         pnl,
		PnLPct:      pct,
		HoldingDays: holding,
		ExitReason:  reason,
		Commission:  commission,
	}
}

func holdingDays(entry, now time.Time) int {
	return int(now.Sub(entry).Hours() / 24)
}
