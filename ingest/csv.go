// Package ingest turns merged indicator CSV files into validated bar series.
// It owns the messy parts of the data contract: header aliasing across
// English and Chinese column names, GBK-encoded exports, sentinel missing
// values, and out-of-order or duplicated dates. The engine only ever sees a
// clean ascending series.
package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/zhengfang04211x-png/PTA/backtest"
)

func LoadCSV(path string) ([]backtest.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()
	bars, err := ReadBars(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadBars parses one CSV document. The date, futures-price and lead-spread
// columns are required; processing margin and basis are optional per row.
func ReadBars(r io.Reader) ([]backtest.Bar, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	raw = decodeToUTF8(raw)

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("empty series: need a header row and at least one data row")
	}

	header := records[0]
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var bars []backtest.Bar
	for rowNum, rec := range records[1:] {
		get := func(idx int) string {
			if idx < 0 || idx >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[idx])
		}

		dateStr := get(cols.date)
		if dateStr == "" {
			continue
		}
		date, err := parseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("row %d: unparseable date %q", rowNum+2, dateStr)
		}

		price, ok := parseNumber(get(cols.price))
		if !ok {
			continue
		}
		spread, ok := parseNumber(get(cols.spread))
		if !ok {
			continue
		}

		b := backtest.Bar{Date: date, Price: price, LeadSpread: spread}
		if cols.margin >= 0 {
			b.Margin, b.HasMargin = parseNumber(get(cols.margin))
		}
		if cols.basis >= 0 {
			b.Basis, b.HasBasis = parseNumber(get(cols.basis))
		}
		bars = append(bars, b)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("empty series: no rows with date, futures price and lead spread")
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })

	// Drop duplicate dates, keeping the first occurrence.
	dedup := bars[:1]
	for _, b := range bars[1:] {
		if b.Date.Equal(dedup[len(dedup)-1].Date) {
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup, nil
}

type columns struct {
	date   int
	price  int
	spread int
	margin int
	basis  int
}

func resolveColumns(header []string) (columns, error) {
	cols := columns{date: -1, price: -1, spread: -1, margin: -1, basis: -1}
	for i, h := range header {
		h = strings.TrimSpace(h)
		switch {
		case cols.date < 0 && isDateColumn(h):
			cols.date = i
		case cols.price < 0 && isFuturesPriceColumn(h):
			cols.price = i
		case cols.spread < 0 && isLeadSpreadColumn(h):
			cols.spread = i
		case cols.margin < 0 && isMarginColumn(h):
			cols.margin = i
		case cols.basis < 0 && isBasisColumn(h):
			cols.basis = i
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "date/日期")
	}
	if cols.price < 0 {
		missing = append(missing, "futures_price/期货价格")
	}
	if cols.spread < 0 {
		missing = append(missing, "px_naphtha_spread/PX石脑油价差")
	}
	if len(missing) > 0 {
		return columns{}, fmt.Errorf("missing required columns %s (available: %s)",
			strings.Join(missing, ", "), strings.Join(header, ", "))
	}
	return cols, nil
}

func isDateColumn(h string) bool {
	l := strings.ToLower(h)
	return strings.Contains(l, "date") || strings.Contains(h, "日期") || strings.Contains(h, "时间")
}

func isFuturesPriceColumn(h string) bool {
	l := strings.ToLower(h)
	if strings.Contains(l, "futures") && strings.Contains(l, "price") {
		return true
	}
	if strings.Contains(h, "现货") {
		return false
	}
	if strings.Contains(h, "期货") && strings.Contains(h, "价格") {
		return true
	}
	return strings.Contains(h, "主力合约") && strings.Contains(h, "价格")
}

func isLeadSpreadColumn(h string) bool {
	l := strings.ToLower(h)
	if strings.Contains(l, "px") && strings.Contains(l, "naphtha") {
		return true
	}
	return strings.Contains(h, "PX") && (strings.Contains(h, "石脑油") || strings.Contains(h, "价差"))
}

func isMarginColumn(h string) bool {
	return strings.Contains(strings.ToLower(h), "margin") || strings.Contains(h, "加工费")
}

func isBasisColumn(h string) bool {
	return strings.Contains(strings.ToLower(h), "basis") || strings.Contains(h, "基差")
}

// decodeToUTF8 handles the encodings these exports show up in: UTF-8 with or
// without a BOM, otherwise GBK.
func decodeToUTF8(raw []byte) []byte {
	raw = bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(raw) {
		return raw
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), raw)
	if err != nil {
		return raw
	}
	return decoded
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"20060102",
	"2006-01-02 15:04:05",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseNumber reports ok=false for the sentinel "missing" spellings these
// files use rather than failing the row.
func parseNumber(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "-" {
		return 0, false
	}
	switch strings.ToLower(s) {
	case "nan", "null", "na":
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
