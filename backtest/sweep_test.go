package backtest

import "testing"

func TestSweepSpecExpand(t *testing.T) {
	base := DefaultConfig()

	spec := SweepSpec{
		SpreadATRMultipliers: []float64{1.0, 1.5},
		Leverages:            []float64{1, 2, 3},
	}
	configs := spec.Expand(base)
	if len(configs) != 6 {
		t.Fatalf("expanded %d configs, want 6", len(configs))
	}
	for _, nc := range configs {
		if nc.Config.HoldingPeriod != base.HoldingPeriod {
			t.Fatalf("unswept dimension changed: %+v", nc)
		}
	}

	// An empty grid still yields the base run.
	single := SweepSpec{}.Expand(base)
	if len(single) != 1 || single[0].Config != base {
		t.Fatalf("empty grid should expand to the base config, got %+v", single)
	}
}

func TestRunSweepKeepsInputOrder(t *testing.T) {
	bars := spikeBars(30, 5000)

	base := quietConfig()
	spec := SweepSpec{HoldingPeriods: []int{5, 10, 15}}
	configs := spec.Expand(base)

	results := RunSweep(bars, configs)
	if len(results) != len(configs) {
		t.Fatalf("got %d results, want %d", len(results), len(configs))
	}
	for i, r := range results {
		if r.Name != configs[i].Name {
			t.Fatalf("result %d out of order: %s vs %s", i, r.Name, configs[i].Name)
		}
		if r.Error != "" {
			t.Fatalf("unexpected error for %s: %s", r.Name, r.Error)
		}
		if r.Metrics.TotalTrades == 0 {
			t.Fatalf("%s produced no trades", r.Name)
		}
	}
}

func TestConfigValidateLeverageCap(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	cfg.Leverage = 20 // min margin rate 7% caps leverage near 14.3
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected leverage cap error")
	}
}
