package backtest

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

type SVGChartOptions struct {
	Width  int
	Height int
}

func (o SVGChartOptions) withDefaults() SVGChartOptions {
	if o.Width <= 0 {
		o.Width = 980
	}
	if o.Height <= 0 {
		o.Height = 520
	}
	return o
}

// RenderEquitySVG draws the equity curve of one run with entry/exit markers.
// The first sample is the initial-capital seed, so sample j>=1 lines up with
// bar j-1.
func RenderEquitySVG(title string, bars []Bar, res *Result, opt SVGChartOptions) ([]byte, error) {
	opt = opt.withDefaults()
	if res == nil || len(res.EquityCurve) < 2 {
		return nil, fmt.Errorf("not enough equity samples")
	}
	if len(res.EquityCurve) != len(bars)+1 {
		return nil, fmt.Errorf("equity curve length %d does not match %d bars", len(res.EquityCurve), len(bars))
	}

	minE := math.Inf(1)
	maxE := math.Inf(-1)
	for _, e := range res.EquityCurve {
		if e < minE {
			minE = e
		}
		if e > maxE {
			maxE = e
		}
	}
	if maxE <= minE {
		pad := math.Abs(minE) * 0.02
		if pad == 0 {
			pad = 1
		}
		minE -= pad
		maxE += pad
	} else {
		pad := (maxE - minE) * 0.05
		minE -= pad
		maxE += pad
	}

	// Layout
	w := float64(opt.Width)
	h := float64(opt.Height)
	mLeft := 80.0
	mRight := 20.0
	mTop := 24.0
	mBottom := 40.0
	plotW := w - mLeft - mRight
	plotH := h - mTop - mBottom
	if plotW <= 10 || plotH <= 10 {
		return nil, fmt.Errorf("invalid chart size")
	}

	equityToY := func(e float64) float64 {
		r := (e - minE) / (maxE - minE)
		r = math.Max(0, math.Min(1, r))
		return mTop + (1.0-r)*plotH
	}
	n := len(res.EquityCurve)
	xAt := func(j int) float64 {
		return mLeft + float64(j)/float64(n-1)*plotW
	}

	bg := "#0b1220"
	grid := "rgba(255,255,255,0.08)"
	curve := "#38bdf8"
	up := "#22c55e"
	down := "#ef4444"
	txt := "rgba(255,255,255,0.85)"

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	buf.WriteString(`<svg xmlns="http://www.w3.org/2000/svg" width="` + strconv.Itoa(opt.Width) + `" height="` + strconv.Itoa(opt.Height) + `" viewBox="0 0 ` + strconv.Itoa(opt.Width) + ` ` + strconv.Itoa(opt.Height) + `">` + "\n")
	buf.WriteString(`<rect x="0" y="0" width="100%" height="100%" fill="` + bg + `"/>` + "\n")

	// Header
	firstD := bars[0].Date.Format("2006-01-02")
	lastD := bars[len(bars)-1].Date.Format("2006-01-02")
	head := strings.TrimSpace(title)
	if head == "" {
		head = "EQUITY"
	}
	buf.WriteString(`<text x="` + fmtFloat(mLeft) + `" y="16" fill="` + txt + `" font-size="14" font-family="ui-monospace, Menlo, Monaco, Consolas, monospace">` +
		html.EscapeString(head) + `  ` + html.EscapeString(firstD) + ` ~ ` + html.EscapeString(lastD) + `</text>` + "\n")

	// Grid: equity lines (5)
	for k := 0; k <= 5; k++ {
		y := mTop + (float64(k)/5.0)*plotH
		buf.WriteString(`<line x1="` + fmtFloat(mLeft) + `" y1="` + fmtFloat(y) + `" x2="` + fmtFloat(mLeft+plotW) + `" y2="` + fmtFloat(y) + `" stroke="` + grid + `" stroke-width="1"/>` + "\n")
		e := maxE - (float64(k)/5.0)*(maxE-minE)
		buf.WriteString(`<text x="6" y="` + fmtFloat(y+4) + `" fill="` + txt + `" font-size="12" font-family="ui-monospace, Menlo, Monaco, Consolas, monospace">` +
			html.EscapeString(fmtEquity(e)) + `</text>` + "\n")
	}

	// Initial-capital reference line
	y0 := equityToY(res.EquityCurve[0])
	buf.WriteString(`<line x1="` + fmtFloat(mLeft) + `" y1="` + fmtFloat(y0) + `" x2="` + fmtFloat(mLeft+plotW) + `" y2="` + fmtFloat(y0) + `" stroke="rgba(255,255,255,0.35)" stroke-width="1" stroke-dasharray="6 6"/>` + "\n")

	// Equity polyline
	var pts strings.Builder
	for j, e := range res.EquityCurve {
		if j > 0 {
			pts.WriteByte(' ')
		}
		pts.WriteString(fmtFloat(xAt(j)) + "," + fmtFloat(equityToY(e)))
	}
	buf.WriteString(`<polyline points="` + pts.String() + `" fill="none" stroke="` + curve + `" stroke-width="1.6"/>` + "\n")

	// Trade markers at entry/exit dates
	dateIndex := make(map[string]int, len(bars))
	for i := range bars {
		dateIndex[bars[i].Date.Format("2006-01-02")] = i
	}
	for _, t := range res.Trades {
		if i, ok := dateIndex[t.EntryDate]; ok {
			buf.WriteString(`<circle cx="` + fmtFloat(xAt(i+1)) + `" cy="` + fmtFloat(equityToY(res.EquityCurve[i+1])) + `" r="3.5" fill="` + up + `"/>` + "\n")
		}
		if i, ok := dateIndex[t.ExitDate]; ok {
			col := up
			if t.PnL <= 0 {
				col = down
			}
			buf.WriteString(`<circle cx="` + fmtFloat(xAt(i+1)) + `" cy="` + fmtFloat(equityToY(res.EquityCurve[i+1])) + `" r="3.5" fill="none" stroke="` + col + `" stroke-width="1.5"/>` + "\n")
		}
	}

	// Footer dates
	buf.WriteString(`<text x="` + fmtFloat(mLeft) + `" y="` + fmtFloat(mTop+plotH+mBottom-12) + `" fill="` + txt + `" font-size="12" font-family="ui-monospace, Menlo, Monaco, Consolas, monospace">` +
		html.EscapeString(firstD) + `</text>` + "\n")
	buf.WriteString(`<text x="` + fmtFloat(mLeft+plotW-70) + `" y="` + fmtFloat(mTop+plotH+mBottom-12) + `" fill="` + txt + `" font-size="12" font-family="ui-monospace, Menlo, Monaco, Consolas, monospace">` +
		html.EscapeString(lastD) + `</text>` + "\n")

	buf.WriteString(`</svg>` + "\n")
	return buf.Bytes(), nil
}

func fmtFloat(x float64) string {
	// stable compact formatting for SVG attributes
	return strconv.FormatFloat(x, 'f', 2, 64)
}

func fmtEquity(e float64) string {
	if math.Abs(e) >= 10000 {
		return strconv.FormatFloat(e/10000, 'f', 1, 64) + "w"
	}
	return strconv.FormatFloat(e, 'f', 0, 64)
}
