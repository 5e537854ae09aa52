package ptactl

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/zhengfang04211x-png/PTA/backtest"
)

func writeTextReport(w io.Writer, bars []backtest.Bar, cfg backtest.Config, res *backtest.Result) error {
	m := res.Metrics

	fmt.Fprintf(w, "PTA 策略回测报告  run_id=%s\n", res.RunID)
	fmt.Fprintf(w, "区间: %s ~ %s (%d 个交易日)\n",
		bars[0].Date.Format("2006-01-02"), bars[len(bars)-1].Date.Format("2006-01-02"), len(bars))
	fmt.Fprintf(w, "初始资金: %.0f  期末权益: %.2f  总收益率: %.2f%%\n",
		cfg.InitialCapital, m.FinalEquity, m.TotalReturnPct)
	fmt.Fprintf(w, "最大回撤: %.2f%%  夏普比率: %.2f\n", m.MaxDrawdownPct, m.SharpeRatio)
	fmt.Fprintf(w, "交易次数: %d  胜率: %.1f%%  盈亏比: %s\n\n",
		m.TotalTrades, m.WinRate*100, fmtPayoff(m.PayoffRatio))

	if len(res.Trades) == 0 {
		fmt.Fprintln(w, "无成交")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "方向\t开仓日\t开仓价\t平仓日\t平仓价\t手数\t盈亏\t盈亏%\t持仓天数\t平仓原因")
	for _, t := range res.Trades {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\t%.1f\t%d\t%.2f\t%.2f\t%d\t%s\n",
			t.Side, t.EntryDate, t.EntryPrice, t.ExitDate, t.ExitPrice,
			t.Contracts, t.PnL, t.PnLPct, t.HoldingDays, t.ExitReason)
	}
	return tw.Flush()
}

func writeSweepText(w io.Writer, results []backtest.SweepResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "参数\t收益率%\t最大回撤%\t夏普\t胜率%\t交易次数")
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(tw, "%s\tERROR: %s\n", r.Name, r.Error)
			continue
		}
		m := r.Metrics
		fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.1f\t%d\n",
			r.Name, m.TotalReturnPct, m.MaxDrawdownPct, m.SharpeRatio, m.WinRate*100, m.TotalTrades)
	}
	return tw.Flush()
}

func fmtPayoff(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
