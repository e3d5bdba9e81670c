package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// CheckoutConfig is the storefront checkout policy. It is loaded from a
// volume-mounted yml file so operators can tune limits without a redeploy.
type CheckoutConfig struct {
	MaxAccountsPerOrder  int     `mapstructure:"maxAccountsPerOrder"`
	MaxDevicesPerAccount int     `mapstructure:"maxDevicesPerAccount"`
	TotalTolerance       float64 `mapstructure:"totalTolerance"`
	QuoteRatePerSecond   float64 `mapstructure:"quoteRatePerSecond"`
	QuoteBurst           int     `mapstructure:"quoteBurst"`
	OrderRatePerSecond   float64 `mapstructure:"orderRatePerSecond"`
	OrderBurst           int     `mapstructure:"orderBurst"`
}

func DefaultCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		MaxAccountsPerOrder:  10,
		MaxDevicesPerAccount: 5,
		TotalTolerance:       0.01,
		QuoteRatePerSecond:   10,
		QuoteBurst:           30,
		OrderRatePerSecond:   1,
		OrderBurst:           5,
	}
}

type CheckoutConfigHolder struct {
	current atomic.Value // holds CheckoutConfig
}

func NewCheckoutConfigHolder() (*CheckoutConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("checkout")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/streamvue/config")
	v.AddConfigPath("/etc/streamvue")
	v.AddConfigPath(".")

	v.SetEnvPrefix("STREAMVUE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCheckoutConfig()
	v.SetDefault("checkout.maxAccountsPerOrder", defaults.MaxAccountsPerOrder)
	v.SetDefault("checkout.maxDevicesPerAccount", defaults.MaxDevicesPerAccount)
	v.SetDefault("checkout.totalTolerance", defaults.TotalTolerance)
	v.SetDefault("checkout.quoteRatePerSecond", defaults.QuoteRatePerSecond)
	v.SetDefault("checkout.quoteBurst", defaults.QuoteBurst)
	v.SetDefault("checkout.orderRatePerSecond", defaults.OrderRatePerSecond)
	v.SetDefault("checkout.orderBurst", defaults.OrderBurst)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg CheckoutConfig
	if err := v.UnmarshalKey("checkout", &cfg); err != nil {
		return nil, err
	}
	if err := validateCheckoutConfig(cfg); err != nil {
		return nil, err
	}

	holder := &CheckoutConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CheckoutConfig
		if err := v.UnmarshalKey("checkout", &updated); err != nil {
			log.Printf("[checkout-config] reload failed: %v", err)
			return
		}
		if err := validateCheckoutConfig(updated); err != nil {
			log.Printf("[checkout-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[checkout-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *CheckoutConfigHolder) Get() CheckoutConfig {
	return h.current.Load().(CheckoutConfig)
}

// NewStaticCheckoutConfigHolder returns a holder pinned to cfg. Test helper.
func NewStaticCheckoutConfigHolder(cfg CheckoutConfig) *CheckoutConfigHolder {
	holder := &CheckoutConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func validateCheckoutConfig(cfg CheckoutConfig) error {
	if cfg.MaxAccountsPerOrder <= 0 {
		return errors.New("checkout.maxAccountsPerOrder must be positive")
	}
	if cfg.MaxDevicesPerAccount <= 0 {
		return errors.New("checkout.maxDevicesPerAccount must be positive")
	}
	if cfg.TotalTolerance < 0 {
		return errors.New("checkout.totalTolerance cannot be negative")
	}
	return nil
}
