// internal/workers/extraction/extract-requirements/config.go
package extractrequirements

import "time"

type ProviderConfig struct {
	Name    string
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type Config struct {
	Primary  ProviderConfig
	Fallback ProviderConfig
	Timeout  time.Duration

	// MaxDocumentChars caps the document text sent to a provider. RFP
	// attachments routinely exceed context windows; the scope-of-supply
	// tables sit at the front of the document.
	MaxDocumentChars int
}

func LoadConfig() *Config {
	return &Config{
		Primary: ProviderConfig{
			Name:    "groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
			Timeout: 60 * time.Second,
		},
		Fallback: ProviderConfig{
			Name:    "openai",
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
			Timeout: 60 * time.Second,
		},
		Timeout:          150 * time.Second,
		MaxDocumentChars: 12000,
	}
}
