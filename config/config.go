package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// Config holds everything the process reads from its environment.
type Config struct {
	Port         int    `env:"PORT" envDefault:"3000"`
	Secret       string `env:"SECRET,required,notEmpty"`
	DatabaseURL  string `env:"DATABASE_URL" envDefault:"mongodb://localhost:27017"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"blog"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL" envDefault:"http://localhost:3000/auth/google/userfeed"`

	FacebookAppID       string `env:"FACEBOOK_APP_ID"`
	FacebookAppSecret   string `env:"FACEBOOK_APP_SECRET"`
	FacebookCallbackURL string `env:"FACEBOOK_CALLBACK_URL" envDefault:"http://localhost:3000/auth/facebook/userfeed"`

	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	OAuthTimeout    time.Duration `env:"OAUTH_TIMEOUT" envDefault:"10s"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"24h"`
	SecureCookies   bool          `env:"SECURE_COOKIES" envDefault:"false"`
	BcryptCost      int           `env:"BCRYPT_COST" envDefault:"10"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	StaticDir string `env:"STATIC_DIR" envDefault:"public"`
}

// Load parses the environment and validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values that parse but cannot be used.
func (c Config) Validate() error {
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.StoreTimeout <= 0 || c.OAuthTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
