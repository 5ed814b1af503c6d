package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by Load when present.
const DefaultEnvFile = ".env"

// Config captures environment driven configuration values for the portal service.
type Config struct {
	HTTPPort      int
	SQLiteDSN     string
	SessionSecret string
	SessionTTL    time.Duration
	LogLevel      slog.Level

	KafkaBrokers []string
	KafkaTopic   string

	// ReleaseRejectedBookings frees the slot held by rejected bookings.
	ReleaseRejectedBookings bool

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
}

// Load reads DefaultEnvFile if it exists and then parses the process environment.
func Load() (Config, error) {
	return LoadFrom(DefaultEnvFile)
}

// LoadFrom reads envFile if it exists and then parses the process environment.
// Variables already set in the environment win over the file.
//
// Missing and invalid variables are reported together in a single error.
func LoadFrom(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	cfg := Config{
		HTTPPort:   8080,
		SQLiteDSN:  "file:portal.db?_pragma=foreign_keys(1)",
		SessionTTL: 24 * time.Hour,
		LogLevel:   slog.LevelInfo,
		KafkaTopic: "portal.bookings",
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if portValue := env("PORTAL_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "PORTAL_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := env("PORTAL_SQLITE_DSN"); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if secret := env("PORTAL_SESSION_SECRET"); secret == "" {
		missing = append(missing, "PORTAL_SESSION_SECRET")
	} else if len(secret) < 16 {
		invalid = append(invalid, "PORTAL_SESSION_SECRET")
	} else {
		cfg.SessionSecret = secret
	}

	if ttlValue := env("PORTAL_SESSION_TTL"); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "PORTAL_SESSION_TTL")
		} else {
			cfg.SessionTTL = ttl
		}
	}

	if levelValue := env("PORTAL_LOG_LEVEL"); levelValue != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "PORTAL_LOG_LEVEL")
		}
	}

	if brokers := env("PORTAL_KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	if topic := env("PORTAL_KAFKA_TOPIC"); topic != "" {
		cfg.KafkaTopic = topic
	}

	if releaseValue := env("PORTAL_BOOKING_RELEASE_REJECTED"); releaseValue != "" {
		release, err := strconv.ParseBool(releaseValue)
		if err != nil {
			invalid = append(invalid, "PORTAL_BOOKING_RELEASE_REJECTED")
		} else {
			cfg.ReleaseRejectedBookings = release
		}
	}

	cfg.BootstrapAdminEmail = env("PORTAL_BOOTSTRAP_ADMIN_EMAIL")
	cfg.BootstrapAdminPassword = os.Getenv("PORTAL_BOOTSTRAP_ADMIN_PASSWORD")
	if cfg.BootstrapAdminEmail != "" && cfg.BootstrapAdminPassword == "" {
		missing = append(missing, "PORTAL_BOOTSTRAP_ADMIN_PASSWORD")
	}

	var problems []string
	if len(missing) > 0 {
		problems = append(problems, "missing required environment variables: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		problems = append(problems, "invalid environment variable values: "+strings.Join(invalid, ", "))
	}
	if len(problems) > 0 {
		return Config{}, errors.New(strings.Join(problems, "; "))
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.HTTPPort)
}

// KafkaEnabled reports whether booking events should be published to Kafka.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
