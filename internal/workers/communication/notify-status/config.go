// internal/workers/communication/notify-status/config.go
package notifystatus

import "time"

type Config struct {
	SNSEnabled bool
	TopicARN   string
	AWSRegion  string
	Timeout    time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
