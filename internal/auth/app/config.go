package app

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/lostfound/pkg/cryptox"
	"github.com/caarlos0/env/v11"
)

type Config struct {
	Env                 string        `env:"ENV" envDefault:"dev"`                         // Environment (dev, staging, prod)
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`                  // debug, info, warn, error
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`                 // json, text
	Port                int           `env:"PORT" envDefault:"8080"`                       // HTTP server port
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`       // Graceful shutdown timeout
	DatabaseFile        string        `env:"AUTH_DATABASE_FILE" envDefault:"lostfound.db"` // Path to SQLite database file

	Issuer             string        `env:"AUTH_ISSUER" envDefault:"lostfound-auth"`
	AccessTokenSecret  string        `env:"ACCESS_TOKEN_SECRET"`  // Generated at startup when empty, except in prod
	RefreshTokenSecret string        `env:"REFRESH_TOKEN_SECRET"` // Generated at startup when empty, except in prod
	AccessTokenTTL     time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"10m"`
	RefreshTokenTTL    time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"30m"`
	TOTPIssuer         string        `env:"TOTP_ISSUER" envDefault:"Objetos Perdidos UN"`

	RecaptchaSecretKey string `env:"RECAPTCHA_SECRET_KEY"`
	RecaptchaVerifyURL string `env:"RECAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`

	RedisAddr               string        `env:"REDIS_ADDR"` // Empty disables the second-factor attempt limiter
	SecondFactorMaxAttempts int           `env:"SECOND_FACTOR_MAX_ATTEMPTS" envDefault:"5"`
	SecondFactorLockout     time.Duration `env:"SECOND_FACTOR_LOCKOUT" envDefault:"1m"`

	HousekeepingInterval time.Duration `env:"HOUSEKEEPING_INTERVAL" envDefault:"1h"`
	PendingTwoFactorTTL  time.Duration `env:"PENDING_2FA_TTL" envDefault:"24h"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProd reports whether the service runs with production settings.
func (c Config) IsProd() bool { return c.Env == "prod" }

// IsDev reports whether internal error details may be echoed to clients.
func (c Config) IsDev() bool { return c.Env == "dev" }

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL and REFRESH_TOKEN_TTL must be positive")
	}
	if c.SecondFactorMaxAttempts <= 0 {
		return fmt.Errorf("invalid SECOND_FACTOR_MAX_ATTEMPTS %d", c.SecondFactorMaxAttempts)
	}

	if c.IsProd() {
		if c.AccessTokenSecret == "" || c.RefreshTokenSecret == "" {
			return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required in prod")
		}
		if c.RecaptchaSecretKey == "" {
			return errors.New("RECAPTCHA_SECRET_KEY is required in prod")
		}
	}
	if c.AccessTokenSecret != "" && c.AccessTokenSecret == c.RefreshTokenSecret {
		return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}
	return nil
}

// ensureSecrets fills empty token secrets with random ones.
func (c *Config) ensureSecrets(logger *slog.Logger) error {
	for name, secret := range map[string]*string{
		"ACCESS_TOKEN_SECRET":  &c.AccessTokenSecret,
		"REFRESH_TOKEN_SECRET": &c.RefreshTokenSecret,
	} {
		if *secret != "" {
			continue
		}
		generated, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return fmt.Errorf("generate %s: %w", name, err)
		}
		*secret = generated
		logger.Warn("token secret not configured, generated one; sessions will not survive a restart", "key", name)
	}
	return nil
}
