package backtest

import (
	"fmt"
	"sync"
)

// SweepSpec is a parameter grid evaluated against one bar series. Empty
// dimensions fall back to the base config's value.
type SweepSpec struct {
	SpreadATRMultipliers []float64 `yaml:"spread_atr_multipliers" json:"spread_atr_multipliers"`
	Leverages            []float64 `yaml:"leverages" json:"leverages"`
	HoldingPeriods       []int     `yaml:"holding_periods" json:"holding_periods"`
}

type NamedConfig struct {
	Name   string `json:"name"`
	Config Config `json:"config"`
}

// Expand crosses the grid dimensions over the base config.
func (s SweepSpec) Expand(base Config) []NamedConfig {
	multipliers := s.SpreadATRMultipliers
	if len(multipliers) == 0 {
		multipliers = []float64{base.SpreadATRMultiplier}
	}
	leverages := s.Leverages
	if len(leverages) == 0 {
		leverages = []float64{base.Leverage}
	}
	holdings := s.HoldingPeriods
	if len(holdings) == 0 {
		holdings = []int{base.HoldingPeriod}
	}

	var out []NamedConfig
	for _, k := range multipliers {
		for _, lev := range leverages {
			for _, hp := range holdings {
				cfg := base
				cfg.SpreadATRMultiplier = k
				cfg.Leverage = lev
				cfg.HoldingPeriod = hp
				out = append(out, NamedConfig{
					Name:   fmt.Sprintf("k=%.2f lev=%.1f hold=%d", k, lev, hp),
					Config: cfg,
				})
			}
		}
	}
	return out
}

type SweepResult struct {
	Name    string  `json:"name"`
	Metrics Metrics `json:"metrics"`
	Error   string  `json:"error,omitempty"`
}

// RunSweep evaluates each configuration on its own engine instance. Runs
// share nothing but the read-only bar series, so they fan out concurrently;
// results come back in input order.
func RunSweep(bars []Bar, configs []NamedConfig) []SweepResult {
	results := make([]SweepResult, len(configs))

	var wg sync.WaitGroup
	for i, nc := range configs {
		wg.Add(1)
		go func(i int, nc NamedConfig) {
			defer wg.Done()
			res, err := Run(bars, nc.Config)
			if err != nil {
				results[i] = SweepResult{Name: nc.Name, Error: err.Error()}
				return
			}
			results[i] = SweepResult{Name: nc.Name, Metrics: res.Metrics}
		}(i, nc)
	}
	wg.Wait()
	return results
}
