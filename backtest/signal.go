package backtest

// GenerateSignals computes the per-bar long/short entry signals from the
// lead-spread series: a day-over-day spread move beyond a volatility-scaled
// threshold (k x spread ATR, relative to yesterday's spread) fires the raw
// signal, optionally gated by the processing-margin valuation filter.
//
// Bar 0 never signals. A zero previous spread leaves the threshold
// undefined, so both signals stay false for that bar.
func GenerateSignals(bars []Bar, cfg Config) []Signal {
	signals := make([]Signal, len(bars))
	if len(bars) < 2 {
		return signals
	}

	spreads := make([]float64, len(bars))
	for i, b := range bars {
		spreads[i] = b.LeadSpread
	}
	spreadATR := RollingTrueRangeMean(spreads, cfg.SpreadATRWindow)

	// The margin filter only participates when the column was observed at all.
	marginSeen := false
	for _, b := range bars {
		if b.HasMargin {
			marginSeen = true
			break
		}
	}
	filterOn := cfg.EnableMarginFilter && marginSeen

	for i := 1; i < len(bars); i++ {
		prev := spreads[i-1]
		if prev == 0 {
			continue
		}
		changePct := (spreads[i]/prev - 1) * 100
		thresholdPct := cfg.SpreadATRMultiplier * (spreadATR[i] / prev) * 100

		long := changePct > thresholdPct
		short := changePct < -thresholdPct

		if filterOn {
			long = long && bars[i].HasMargin && bars[i].Margin < cfg.LongMarginMax
			short = short && bars[i].HasMargin && bars[i].Margin > cfg.ShortMarginMin
		}

		signals[i] = Signal{Long: long, Short: short}
	}
	return signals
}
