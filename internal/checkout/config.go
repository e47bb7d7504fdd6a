package checkout

import (
	"log"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
)

// Config carries the tunable business constants. The source system
// hardcoded all three; here they come from the environment so stores can
// change tax and loyalty policy without a rebuild.
type Config struct {
	TaxRate             decimal.Decimal // e.g. 0.10 for 10%
	PointsPerCurrency   int             // points worth 1 unit of currency
	PointsRewardPerSale int             // flat accrual per completed sale
}

// DefaultConfig matches the source system's constants: 10% tax,
// 10 points = $1, +5 points per sale.
func DefaultConfig() Config {
	return Config{
		TaxRate:             decimal.NewFromFloat(0.10),
		PointsPerCurrency:   10,
		PointsRewardPerSale: 5,
	}
}

// LoadConfig reads TAX_RATE, POINTS_PER_CURRENCY and POINTS_REWARD_PER_SALE
// from the environment, falling back to the defaults on anything missing
// or unparsable.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if raw := os.Getenv("TAX_RATE"); raw != "" {
		if rate, err := decimal.NewFromString(raw); err == nil && !rate.IsNegative() {
			cfg.TaxRate = rate
		} else {
			log.Printf("Warning: ignoring invalid TAX_RATE=%q", raw)
		}
	}
	if raw := os.Getenv("POINTS_PER_CURRENCY"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.PointsPerCurrency = n
		} else {
			log.Printf("Warning: ignoring invalid POINTS_PER_CURRENCY=%q", raw)
		}
	}
	if raw := os.Getenv("POINTS_REWARD_PER_SALE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			cfg.PointsRewardPerSale = n
		} else {
			log.Printf("Warning: ignoring invalid POINTS_REWARD_PER_SALE=%q", raw)
		}
	}

	return cfg
}
