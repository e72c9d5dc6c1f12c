// internal/workers/data-access/search-catalog/config.go
package searchcatalog

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultIndex string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      15 * time.Second,
		DefaultIndex: "oem_products",
	}
}
