package backtest

import "time"

type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

type ExitReason string

const (
	ExitHoldingPeriod   ExitReason = "holding_period_expired"
	ExitPriceStop       ExitReason = "price_stop"
	ExitSpreadMAStop    ExitReason = "spread_ma_stop"
	ExitBasisTakeProfit ExitReason = "basis_take_profit"
	ExitEndOfData       ExitReason = "end_of_data"
)

// Bar is one trading day of merged strategy data. Price is the tradable
// futures price (never spot). Margin (PTA processing margin) and Basis are
// optional; check the Has flags before reading them.
type Bar struct {
	Date       time.Time
	Price      float64
	LeadSpread float64 // PX-naphtha spread, the leading signal series
	Margin     float64
	HasMargin  bool
	Basis      float64
	HasBasis   bool
}

// Signal is the per-bar entry decision. A signal computed on bar i is only
// actionable at bar i+1's price.
type Signal struct {
	Long  bool
	Short bool
}

// position is the single live position the engine may hold. committedMargin
// is fixed at entry; basisHistory starts fresh on every open.
type position struct {
	side            Side
	entryDate       time.Time
	entryPrice      float64
	entrySpread     float64
	stopPrice       float64
	contracts       int
	committedMargin float64
	basisHistory    []float64
}

func (p *position) unrealized(price, multiplier float64) float64 {
	diff := price - p.entryPrice
	if p.side == SideShort {
		diff = -diff
	}
	return diff * float64(p.contracts) * multiplier
}

type Trade struct {
	Side        Side       `json:"side"`
	EntryDate   string     `json:"entry_date"`
	EntryPrice  float64    `json:"entry_price"`
	ExitDate    string     `json:"exit_date"`
	ExitPrice   float64    `json:"exit_price"`
	Contracts   int        `json:"contracts"`
	PnL         float64    `json:"pnl"`
	PnLPct      float64    `json:"pnl_pct"` // net P&L over committed margin
	HoldingDays int        `json:"holding_days"`
	ExitReason  ExitReason `json:"exit_reason"`
	Commission  float64    `json:"commission"`
}

// Result is the bundle a single run produces: ordered trade log, equity
// curve (initial capital seed + one sample per bar) and summary metrics.
type Result struct {
	RunID       string    `json:"run_id"`
	Trades      []Trade   `json:"trades"`
	EquityCurve []float64 `json:"equity_curve"`
	Metrics     Metrics   `json:"metrics"`
}
