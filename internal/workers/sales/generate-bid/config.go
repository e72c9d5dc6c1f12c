// internal/workers/sales/generate-bid/config.go
package generatebid

import "time"

type Config struct {
	Timeout      time.Duration
	ValidityDays int
	CompanyName  string
	ContactEmail string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		ValidityDays: 90,
		CompanyName:  "Apar Industries Ltd",
		ContactEmail: "bids@aparcables.example.com",
	}
}
