package config

import "time"

// SeedListener describes a volunteer account ensured at startup.
type SeedListener struct {
	Email    string `mapstructure:"email" yaml:"email"`
	Password string `mapstructure:"password" yaml:"password"`
	Name     string `mapstructure:"name" yaml:"name"`
}

// JWT holds listener session token settings.
type JWT struct {
	Secret   string        `mapstructure:"secret" yaml:"secret"`
	Issuer   string        `mapstructure:"issuer" yaml:"issuer"`
	Audience string        `mapstructure:"audience" yaml:"audience"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`

	// AuthTimeout bounds a single credential check so a slow database
	// cannot stall a connection's read loop indefinitely.
	AuthTimeout time.Duration `mapstructure:"auth_timeout" yaml:"auth_timeout"`

	// LoginRateLimit is the number of REST login attempts allowed per
	// minute. Zero disables the limiter.
	LoginRateLimit int `mapstructure:"login_rate_limit" yaml:"login_rate_limit"`

	JWT JWT `mapstructure:"jwt" yaml:"jwt"`

	SeedListeners []SeedListener `mapstructure:"seed_listeners" yaml:"seed_listeners"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "quietline.db",
		LogLevel:          "info",
		AuthTimeout:       5 * time.Second,
		LoginRateLimit:    30,
		JWT: JWT{
			Secret:   "change-me",
			Issuer:   "quietline",
			Audience: "quietline-listeners",
			TTL:      24 * time.Hour,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.AuthTimeout != 0 {
		c.AuthTimeout = other.AuthTimeout
	}
	if other.LoginRateLimit != 0 {
		c.LoginRateLimit = other.LoginRateLimit
	}
	if other.JWT.Secret != "" {
		c.JWT.Secret = other.JWT.Secret
	}
	if other.JWT.Issuer != "" {
		c.JWT.Issuer = other.JWT.Issuer
	}
	if other.JWT.Audience != "" {
		c.JWT.Audience = other.JWT.Audience
	}
	if other.JWT.TTL != 0 {
		c.JWT.TTL = other.JWT.TTL
	}
	if len(other.SeedListeners) > 0 {
		c.SeedListeners = other.SeedListeners
	}
}
