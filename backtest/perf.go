package backtest

import (
	"encoding/json"
	"math"
)

// Metrics are the summary statistics of one run. PayoffRatio is +Inf when
// there are no losing trades; JSON encoding renders that as null.
type Metrics struct {
	TotalTrades    int     `json:"total_trades"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"` // non-positive: worst loss from peak
	WinRate        float64 `json:"win_rate"`
	PayoffRatio    float64 `json:"payoff_ratio"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
	FinalEquity    float64 `json:"final_equity"`
}

func (m Metrics) MarshalJSON() ([]byte, error) {
	type alias Metrics
	out := struct {
		alias
		PayoffRatio any `json:"payoff_ratio"`
	}{alias: alias(m), PayoffRatio: m.PayoffRatio}
	if math.IsInf(m.PayoffRatio, 0) || math.IsNaN(m.PayoffRatio) {
		out.PayoffRatio = nil
	}
	return json.Marshal(out)
}

func ComputeMetrics(equity []float64, trades []Trade, tradingDaysPerYear int) Metrics {
	m := Metrics{TotalTrades: len(trades)}
	if len(equity) == 0 {
		return m
	}
	m.FinalEquity = equity[len(equity)-1]
	if equity[0] != 0 {
		m.TotalReturnPct = (m.FinalEquity/equity[0] - 1) * 100
	}
	m.MaxDrawdownPct = maxDrawdownPct(equity)
	m.WinRate, m.PayoffRatio = tradeStats(trades)
	m.SharpeRatio = sharpeRatio(equity, tradingDaysPerYear)
	return m
}

func maxDrawdownPct(equity []float64) float64 {
	worst := 0.0
	peak := math.Inf(-1)
	for _, e := range equity {
		if e > peak {
			peak = e
		}
		if peak > 0 {
			dd := (e - peak) / peak * 100
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func tradeStats(trades []Trade) (winRate, payoffRatio float64) {
	if len(trades) == 0 {
		return 0, 0
	}
	var wins, losses int
	var winSum, lossSum float64
	for _, t := range trades {
		if t.PnL > 0 {
			wins++
			winSum += t.PnL
		} else {
			losses++
			lossSum += t.PnL
		}
	}
	winRate = float64(wins) / float64(len(trades))

	avgWin := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	avgLoss := 0.0
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	if avgLoss == 0 {
		return winRate, math.Inf(1)
	}
	return winRate, math.Abs(avgWin / avgLoss)
}

// sharpeRatio annualizes mean/stdev of the equity curve's daily returns
// (sample standard deviation). Fewer than two returns or zero variance
// reports 0 rather than failing.
func sharpeRatio(equity []float64, tradingDaysPerYear int) float64 {
	var returns []float64
	for i := 1; i < len(equity); i++ {
		if equity[i-1] == 0 {
			continue
		}
		returns = append(returns, equity[i]/equity[i-1]-1)
	}
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	if variance <= 0 {
		return 0
	}
	return mean / math.Sqrt(variance) * math.Sqrt(float64(tradingDaysPerYear))
}
