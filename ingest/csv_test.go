package ingest

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

func TestReadBarsEnglishColumns(t *testing.T) {
	csvData := `date,futures_price,px_naphtha_spread,processing_margin,basis
2024-01-02,5500,1000,400,120
2024-01-03,5520,1010,-,130
2024-01-04,5490,990,410,
`
	bars, err := ReadBars(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(bars))
	}
	if bars[0].Price != 5500 || bars[0].LeadSpread != 1000 {
		t.Fatalf("bar 0 = %+v", bars[0])
	}
	if !bars[0].HasMargin || bars[0].Margin != 400 {
		t.Fatalf("bar 0 margin = %+v", bars[0])
	}
	if bars[1].HasMargin {
		t.Fatalf("'-' must read as missing margin: %+v", bars[1])
	}
	if !bars[1].HasBasis || bars[1].Basis != 130 {
		t.Fatalf("bar 1 basis = %+v", bars[1])
	}
	if bars[2].HasBasis {
		t.Fatalf("empty cell must read as missing basis: %+v", bars[2])
	}
}

func TestReadBarsChineseColumnsGBK(t *testing.T) {
	csvData := "日期,PTA期货价格,PX石脑油价差,PTA加工费,基差\n" +
		"2024/1/2,5500,1000,400,120\n" +
		"2024/1/3,5520,1010,500,110\n"

	gbk, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte(csvData))
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	bars, err := ReadBars(strings.NewReader(string(gbk)))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
	if bars[1].Date.Format("2006-01-02") != "2024-01-03" {
		t.Fatalf("bar 1 date = %s", bars[1].Date)
	}
	if !bars[1].HasMargin || bars[1].Margin != 500 {
		t.Fatalf("bar 1 = %+v", bars[1])
	}
}

func TestReadBarsSpotColumnIgnored(t *testing.T) {
	csvData := "日期,PTA现货价格,PTA期货价格,PX石脑油价差\n" +
		"2024-01-02,5400,5500,1000\n"

	bars, err := ReadBars(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bars[0].Price != 5500 {
		t.Fatalf("picked the spot column: %+v", bars[0])
	}
}

func TestReadBarsSortsAndDeduplicates(t *testing.T) {
	csvData := `date,futures_price,px_naphtha_spread
2024-01-05,5600,1020
2024-01-02,5500,1000
2024-01-05,5999,1099
2024-01-03,5520,1010
`
	bars, err := ReadBars(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("got %d bars, want 3", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Date.Before(bars[i].Date) {
			t.Fatalf("dates not ascending: %v then %v", bars[i-1].Date, bars[i].Date)
		}
	}
	// First occurrence of the duplicated date wins.
	if bars[2].Price != 5600 {
		t.Fatalf("duplicate date: price = %v, want 5600", bars[2].Price)
	}
}

func TestReadBarsSkipsRowsMissingRequired(t *testing.T) {
	csvData := `date,futures_price,px_naphtha_spread
2024-01-02,5500,1000
2024-01-03,,1010
2024-01-04,5490,nan
2024-01-05,5505,1005
`
	bars, err := ReadBars(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("got %d bars, want 2", len(bars))
	}
}

func TestReadBarsErrors(t *testing.T) {
	_, err := ReadBars(strings.NewReader("date,futures_price\n2024-01-02,5500\n"))
	if err == nil || !strings.Contains(err.Error(), "missing required columns") {
		t.Fatalf("expected missing column error, got %v", err)
	}

	_, err = ReadBars(strings.NewReader("date,futures_price,px_naphtha_spread\nnot-a-date,5500,1000\n"))
	if err == nil || !strings.Contains(err.Error(), "unparseable date") {
		t.Fatalf("expected date error, got %v", err)
	}

	_, err = ReadBars(strings.NewReader("date,futures_price,px_naphtha_spread\n"))
	if err == nil {
		t.Fatalf("expected empty series error")
	}
}
