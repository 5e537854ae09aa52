package backtest

import "math"

// sizeContracts turns available capital into an integer contract count for a
// new position. The margin pool is capital x MaxPositionRatio; one trade
// commits PositionSizeFraction of that pool (scaled by the dynamic-sizing
// rule when enabled), levered into notional and floored to whole contracts.
//
// A zero contract count is a valid "insufficient capital" outcome, not an
// error; the caller skips the entry. On success the committed margin is
// recomputed from the integer count, since flooring changes the true
// capital at risk.
func sizeContracts(capital, entryPrice float64, hasMargin bool, margin float64, cfg Config) (contracts int, committed float64) {
	if capital <= 0 || entryPrice <= 0 {
		return 0, 0
	}

	fraction := cfg.PositionSizeFraction
	if cfg.EnableDynamicPosition && hasMargin {
		switch {
		case margin < cfg.MarginLowThreshold:
			fraction *= cfg.PositionMultiplierLow
		case margin > cfg.MarginHighThreshold:
			fraction *= cfg.PositionMultiplierHigh
		}
	}

	availableMargin := capital * cfg.MaxPositionRatio
	marginToInvest := availableMargin * fraction
	notional := marginToInvest * cfg.Leverage

	contracts = int(math.Floor(notional / (entryPrice * cfg.ContractMultiplier)))
	if contracts < 1 {
		return 0, 0
	}
	committed = float64(contracts) * entryPrice * cfg.ContractMultiplier / cfg.Leverage
	return contracts, committed
}
