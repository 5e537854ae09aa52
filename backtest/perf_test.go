package backtest

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
)

func TestMaxDrawdownPct(t *testing.T) {
	equity := []float64{100, 120, 90, 110}
	got := maxDrawdownPct(equity)
	want := (90.0 - 120.0) / 120.0 * 100
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("drawdown = %v, want %v", got, want)
	}
	if got > 0 {
		t.Fatalf("drawdown must be non-positive, got %v", got)
	}

	if dd := maxDrawdownPct([]float64{100, 110, 120}); dd != 0 {
		t.Fatalf("monotone equity: drawdown = %v, want 0", dd)
	}
}

func TestTradeStats(t *testing.T) {
	winRate, payoff := tradeStats(nil)
	if winRate != 0 || payoff != 0 {
		t.Fatalf("no trades: got %v/%v, want 0/0", winRate, payoff)
	}

	trades := []Trade{{PnL: 200}, {PnL: 100}, {PnL: -100}, {PnL: -50}}
	winRate, payoff = tradeStats(trades)
	if winRate != 0.5 {
		t.Fatalf("win rate = %v, want 0.5", winRate)
	}
	if math.Abs(payoff-2) > 1e-9 { // avg win 150 / avg loss 75
		t.Fatalf("payoff = %v, want 2", payoff)
	}

	// All winners: payoff is unbounded, not an error.
	_, payoff = tradeStats([]Trade{{PnL: 100}, {PnL: 50}})
	if !math.IsInf(payoff, 1) {
		t.Fatalf("payoff = %v, want +Inf", payoff)
	}
}

func TestMetricsJSONRendersInfPayoffAsNull(t *testing.T) {
	m := Metrics{TotalTrades: 2, PayoffRatio: math.Inf(1)}
	raw, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"payoff_ratio":null`) {
		t.Fatalf("expected null payoff ratio, got %s", raw)
	}
}

func TestSharpeRatioEdges(t *testing.T) {
	if s := sharpeRatio([]float64{100, 110}, 252); s != 0 {
		t.Fatalf("single return: sharpe = %v, want 0", s)
	}
	if s := sharpeRatio([]float64{100, 100, 100, 100}, 252); s != 0 {
		t.Fatalf("zero variance: sharpe = %v, want 0", s)
	}
	if s := sharpeRatio([]float64{100, 102, 101, 104}, 252); s == 0 {
		t.Fatalf("varying returns should give a nonzero sharpe")
	}
}

func TestComputeMetrics(t *testing.T) {
	equity := []float64{100000, 101000, 99000, 103000}
	m := ComputeMetrics(equity, []Trade{{PnL: 3000}}, 252)
	if math.Abs(m.TotalReturnPct-3) > 1e-9 {
		t.Fatalf("total return = %v, want 3", m.TotalReturnPct)
	}
	if m.FinalEquity != 103000 {
		t.Fatalf("final equity = %v", m.FinalEquity)
	}
	if m.TotalTrades != 1 {
		t.Fatalf("total trades = %d", m.TotalTrades)
	}
	if m.MaxDrawdownPct > 0 {
		t.Fatalf("drawdown sign: %v", m.MaxDrawdownPct)
	}
}
