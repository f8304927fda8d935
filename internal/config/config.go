// Package config loads the exchange's tunables via viper, grounded on
// 0xtitan6-polymarket-mm/internal/config: mapstructure-tagged struct,
// defaults registered with SetDefault, overridable by a YAML file and
// by GLAZE_-prefixed environment variables.
package config

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds every tunable spec.md §6 names. Decimal fields are
// loaded as strings and parsed explicitly (viper/mapstructure doesn't
// know decimal.Decimal) rather than as float64, so money and
// percentages never pass through a binary float.
type Config struct {
	BaseDonutPrice       string `mapstructure:"base_donut_price"`
	InitialOutletBalance string `mapstructure:"initial_outlet_balance"`
	DefaultMarginPercent string `mapstructure:"default_margin_percent"`
	SupplierOutletID     string `mapstructure:"supplier_outlet_id"`

	SupplierTickMS  int `mapstructure:"supplier_tick_ms"`
	PurchaserTickMS int `mapstructure:"purchaser_tick_ms"`
	CustomerTickMS  int `mapstructure:"customer_tick_ms"`

	SupplierMinQty int `mapstructure:"supplier_min_qty"`
	SupplierMaxQty int `mapstructure:"supplier_max_qty"`

	PurchaserMinQty int `mapstructure:"purchaser_min_qty"`
	PurchaserMaxQty int `mapstructure:"purchaser_max_qty"`

	CustomerMinQty int `mapstructure:"customer_min_qty"`
	CustomerMaxQty int `mapstructure:"customer_max_qty"`

	DBPath   string `mapstructure:"db_path"`
	HTTPAddr string `mapstructure:"http_addr"`
}

// Parsed is Config with its decimal fields converted, used everywhere
// downstream of Load.
type Parsed struct {
	Config
	BaseDonutPrice       decimal.Decimal
	InitialOutletBalance decimal.Decimal
	DefaultMarginPercent decimal.Decimal
}

func defaults(v *viper.Viper) {
	v.SetDefault("base_donut_price", "2.00")
	v.SetDefault("initial_outlet_balance", "10000.00")
	v.SetDefault("default_margin_percent", "25.00")
	v.SetDefault("supplier_outlet_id", "supplier-factory")

	v.SetDefault("supplier_tick_ms", 5000)
	v.SetDefault("purchaser_tick_ms", 4000)
	v.SetDefault("customer_tick_ms", 2000)

	v.SetDefault("supplier_min_qty", 20)
	v.SetDefault("supplier_max_qty", 100)

	v.SetDefault("purchaser_min_qty", 10)
	v.SetDefault("purchaser_max_qty", 50)

	v.SetDefault("customer_min_qty", 1)
	v.SetDefault("customer_max_qty", 3)

	v.SetDefault("db_path", "glaze.db")
	v.SetDefault("http_addr", ":8080")
}

// Load reads configPath (if non-empty) as YAML, layers GLAZE_-prefixed
// env vars on top, and returns the parsed result. A missing
// configPath is not an error — defaults and env vars still apply.
func Load(configPath string) (Parsed, error) {
	v := viper.New()
	defaults(v)

	v.SetEnvPrefix("GLAZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Parsed{}, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Parsed{}, err
	}

	basePrice, err := decimal.NewFromString(cfg.BaseDonutPrice)
	if err != nil {
		return Parsed{}, err
	}
	initialBalance, err := decimal.NewFromString(cfg.InitialOutletBalance)
	if err != nil {
		return Parsed{}, err
	}
	margin, err := decimal.NewFromString(cfg.DefaultMarginPercent)
	if err != nil {
		return Parsed{}, err
	}

	return Parsed{
		Config:               cfg,
		BaseDonutPrice:       basePrice,
		InitialOutletBalance: initialBalance,
		DefaultMarginPercent: margin,
	}, nil
}
