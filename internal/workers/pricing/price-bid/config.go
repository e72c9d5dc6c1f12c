// internal/workers/pricing/price-bid/config.go
package pricebid

import "time"

type Config struct {
	Timeout         time.Duration
	DefaultQuantity int
	ContingencyRate float64
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         30 * time.Second,
		DefaultQuantity: 1000,
		ContingencyRate: 0.10,
	}
}
