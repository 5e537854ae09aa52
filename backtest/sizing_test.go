package backtest

import (
	"math"
	"testing"
)

func TestSizeContractsSkipsWhenCapitalTooSmall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.InitialCapital = 100000

	// 100000*0.8*0.1 = 8000 notional vs 30000 per contract: floor to 0.
	contracts, committed := sizeContracts(100000, 6000, false, 0, cfg)
	if contracts != 0 || committed != 0 {
		t.Fatalf("got %d contracts (%v committed), want skip", contracts, committed)
	}
}

func TestSizeContractsCommittedMarginFromIntegerCount(t *testing.T) {
	cfg := DefaultConfig()

	// 1,000,000*0.8*0.1 = 80000 notional / 25000 = 3.2 -> 3 contracts.
	contracts, committed := sizeContracts(1000000, 5000, false, 0, cfg)
	if contracts != 3 {
		t.Fatalf("contracts = %d, want 3", contracts)
	}
	want := 3.0 * 5000 * 5 / cfg.Leverage
	if math.Abs(committed-want) > 1e-9 {
		t.Fatalf("committed = %v, want %v", committed, want)
	}
}

func TestSizeContractsLeverageMonotonic(t *testing.T) {
	cfg := DefaultConfig()
	prev := 0
	for lev := 1.0; lev <= 10; lev++ {
		cfg.Leverage = lev
		contracts, _ := sizeContracts(1000000, 5000, false, 0, cfg)
		if contracts < prev {
			t.Fatalf("leverage %.0f: contracts dropped from %d to %d", lev, prev, contracts)
		}
		prev = contracts
	}
}

func TestSizeContractsDynamicMultipliers(t *testing.T) {
	cfg := DefaultConfig()

	base, _ := sizeContracts(1000000, 5000, true, 500, cfg) // between thresholds
	low, _ := sizeContracts(1000000, 5000, true, 300, cfg)  // below 350: x1.5
	high, _ := sizeContracts(1000000, 5000, true, 700, cfg) // above 600: x0.5

	if base != 3 || low != 4 || high != 1 {
		t.Fatalf("base/low/high = %d/%d/%d, want 3/4/1", base, low, high)
	}

	cfg.EnableDynamicPosition = false
	off, _ := sizeContracts(1000000, 5000, true, 300, cfg)
	if off != 3 {
		t.Fatalf("dynamic sizing disabled: contracts = %d, want 3", off)
	}
}
