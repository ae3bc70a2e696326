// Package config loads the server configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultPort   = "8080"
	defaultDBName = "mentorship"
	devDBPrefix   = "dev_"
)

type Config struct {
	Port               string
	DBURL              string
	DBName             string
	DBTransactions     bool
	SeedDir            string
	LogLevel           string
	CORSOrigins        []string
	RateLimitPerMinute int
	NATSURL            string
	NATSSubject        string
	AdminUsername      string
	AdminPassword      string
	JWTSecret          string
	JWTExpiry          time.Duration
	ShutdownTimeout    time.Duration
}

// AuthEnabled reports whether admin credentials were configured.
func (c *Config) AuthEnabled() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

// Load reads the configuration. Values from envFiles (if they exist) are
// loaded into the environment first; real environment variables win. When
// dev is true the database name gets a "dev_" prefix.
func Load(dev bool, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("godotenv.Load(%s) error: %w", f, err)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("DB_URL", "")
	v.SetDefault("DB_NAME", defaultDBName)
	v.SetDefault("DB_TRANSACTIONS", true)
	v.SetDefault("SEED_DIR", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 120)
	v.SetDefault("NATS_URL", "")
	v.SetDefault("NATS_SUBJECT", "mentorship.assignments")
	v.SetDefault("ADMIN_USERNAME", "")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY", 24*time.Hour)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.AutomaticEnv()

	cfg := &Config{
		Port:               v.GetString("PORT"),
		DBURL:              v.GetString("DB_URL"),
		DBName:             v.GetString("DB_NAME"),
		DBTransactions:     v.GetBool("DB_TRANSACTIONS"),
		SeedDir:            v.GetString("SEED_DIR"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		NATSURL:            v.GetString("NATS_URL"),
		NATSSubject:        v.GetString("NATS_SUBJECT"),
		AdminUsername:      v.GetString("ADMIN_USERNAME"),
		AdminPassword:      v.GetString("ADMIN_PASSWORD"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTExpiry:          v.GetDuration("JWT_EXPIRY"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if dev {
		cfg.DBName = devDBPrefix + cfg.DBName
	}

	if cfg.Port == "" {
		return nil, errors.New("PORT cannot be empty")
	}
	if cfg.RateLimitPerMinute < 0 {
		return nil, fmt.Errorf("RATE_LIMIT_PER_MINUTE cannot be negative: %d", cfg.RateLimitPerMinute)
	}
	if (cfg.AdminUsername == "") != (cfg.AdminPassword == "") {
		return nil, errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
