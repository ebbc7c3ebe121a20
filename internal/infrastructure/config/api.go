package config

import "time"

// APIConfig holds the HTTP control surface configuration.
type APIConfig struct {
	// Listen address, host:port.
	Address string `mapstructure:"address"`

	// Request handling timeouts.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Rate limiting of control requests.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// CORS origins allowed to call the API. Empty allows all.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig holds token-bucket limiter settings.
type RateLimitConfig struct {
	Requests float64 `mapstructure:"requests" validate:"omitempty,min=0"`
	Burst    int     `mapstructure:"burst" validate:"omitempty,min=1"`
}
