package backtest

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is one run's complete, immutable parameter set. Engines never share
// configuration state, so concurrent runs cannot clobber each other.
type Config struct {
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" default:"1000000" validate:"gt=0"`

	// Signal generation
	SpreadATRWindow     int     `yaml:"spread_atr_window" json:"spread_atr_window" default:"20" validate:"gte=1"`
	SpreadATRMultiplier float64 `yaml:"spread_atr_multiplier" json:"spread_atr_multiplier" default:"1.5" validate:"gt=0"`

	// Valuation filter on the processing margin
	EnableMarginFilter bool    `yaml:"enable_margin_filter" json:"enable_margin_filter" default:"true"`
	LongMarginMax      float64 `yaml:"long_margin_max" json:"long_margin_max" default:"450"`
	ShortMarginMin     float64 `yaml:"short_margin_min" json:"short_margin_min" default:"750"`

	// Execution
	PositionSizeFraction float64 `yaml:"position_size_fraction" json:"position_size_fraction" default:"0.1" validate:"gt=0,lte=1"`
	MaxPositionRatio     float64 `yaml:"max_position_ratio" json:"max_position_ratio" default:"0.8" validate:"gt=0,lte=1"`
	HoldingPeriod        int     `yaml:"holding_period" json:"holding_period" default:"15" validate:"gte=1"`
	Leverage             float64 `yaml:"leverage" json:"leverage" default:"1" validate:"gte=1"`
	ContractMultiplier   float64 `yaml:"contract_multiplier" json:"contract_multiplier" default:"5" validate:"gt=0"`
	MinMarginRate        float64 `yaml:"min_margin_rate" json:"min_margin_rate" default:"0.07" validate:"gt=0,lte=1"`

	// Commission: fixed per contract per side, or a rate on entry+exit notional
	CommissionMode        string  `yaml:"commission_mode" json:"commission_mode" default:"per_contract" validate:"oneof=per_contract notional_rate"`
	CommissionPerContract float64 `yaml:"commission_per_contract" json:"commission_per_contract" default:"3.3" validate:"gte=0"`
	CommissionRate        float64 `yaml:"commission_rate" json:"commission_rate" default:"0.0001" validate:"gte=0"`

	// Risk control
	PriceATRWindow     int     `yaml:"price_atr_window" json:"price_atr_window" default:"14" validate:"gte=1"`
	ATRStopMultiplier  float64 `yaml:"atr_stop_multiplier" json:"atr_stop_multiplier" default:"1.5" validate:"gt=0"`
	EnableSpreadMAStop bool    `yaml:"enable_spread_ma_stop" json:"enable_spread_ma_stop" default:"true"`
	SpreadMAWindow     int     `yaml:"spread_ma_window" json:"spread_ma_window" default:"5" validate:"gte=1"`

	// Basis take-profit
	EnableBasisTakeProfit bool    `yaml:"enable_basis_take_profit" json:"enable_basis_take_profit" default:"true"`
	BasisTPThresholdPct   float64 `yaml:"basis_tp_threshold_pct" json:"basis_tp_threshold_pct" default:"2"`
	BasisMinHoldingDays   int     `yaml:"basis_min_holding_days" json:"basis_min_holding_days" default:"7" validate:"gte=0"`
	BasisDeclineDays      int     `yaml:"basis_decline_days" json:"basis_decline_days" default:"3" validate:"gte=1"`

	// Dynamic position sizing keyed on the processing margin
	EnableDynamicPosition  bool    `yaml:"enable_dynamic_position" json:"enable_dynamic_position" default:"true"`
	MarginLowThreshold     float64 `yaml:"margin_low_threshold" json:"margin_low_threshold" default:"350"`
	MarginHighThreshold    float64 `yaml:"margin_high_threshold" json:"margin_high_threshold" default:"600"`
	PositionMultiplierLow  float64 `yaml:"position_multiplier_low" json:"position_multiplier_low" default:"1.5" validate:"gt=0"`
	PositionMultiplierHigh float64 `yaml:"position_multiplier_high" json:"position_multiplier_high" default:"0.5" validate:"gt=0"`

	TradingDaysPerYear int `yaml:"trading_days_per_year" json:"trading_days_per_year" default:"252" validate:"gte=1"`
}

var validate = validator.New()

func DefaultConfig() Config {
	var c Config
	_ = defaults.Set(&c)
	return c
}

// Validate reports configuration errors before a run starts. Beyond the tag
// bounds, leverage may not exceed the maximum implied by the minimum margin
// rate.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	maxLeverage := 1.0 / c.MinMarginRate
	if c.Leverage > maxLeverage {
		return fmt.Errorf("config: leverage %.2f exceeds maximum %.1f implied by min margin rate %.0f%%",
			c.Leverage, maxLeverage, c.MinMarginRate*100)
	}
	return nil
}

// FileConfig is the on-disk YAML layout: a base run config plus an optional
// sweep grid.
type FileConfig struct {
	Backtest Config    `yaml:"backtest"`
	Sweep    SweepSpec `yaml:"sweep"`
}

func LoadFileConfig(path string) (FileConfig, error) {
	fc := FileConfig{Backtest: DefaultConfig()}

	raw, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := fc.Backtest.Validate(); err != nil {
		return FileConfig{}, err
	}
	return fc, nil
}
