package config

import (
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds settings for the outbound integrations: the reverse geocode
// proxy and the assist (story and speech) proxies.
type Config struct {
	// Reverse geocoding
	NominatimBaseURL string        `env:"NOMINATIM_BASE_URL" envDefault:"https://nominatim.openstreetmap.org"`
	GeocodeTimeout   time.Duration `env:"GEOCODE_TIMEOUT" envDefault:"10s"`
	GeocodeRetryMax  time.Duration `env:"GEOCODE_RETRY_MAX" envDefault:"15s"`
	GeocodeUserAgent string        `env:"GEOCODE_USER_AGENT" envDefault:"carebridge/1.0"`

	// Assist proxies; empty API key disables them (503)
	AssistBaseURL string        `env:"ASSIST_BASE_URL" envDefault:"https://api.openai.com/v1"`
	AssistAPIKey  string        `env:"ASSIST_API_KEY" envDefault:""`
	AssistModel   string        `env:"ASSIST_MODEL" envDefault:"gpt-4o-mini"`
	AssistVoice   string        `env:"ASSIST_VOICE" envDefault:"nova"`
	AssistTimeout time.Duration `env:"ASSIST_TIMEOUT" envDefault:"60s"`
}

// LoadConfig loads integration configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
