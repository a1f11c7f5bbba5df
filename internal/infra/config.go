package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"rosterup"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"rosterup"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"rosterup"`
	PGMaxConns  int    `env:"PG_MAX_CONNS" envDefault:"16"`

	// Admin sessions (JWT)
	JWTSecret      string `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTAdminExpiry string `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Coach sessions (opaque cookie tokens)
	CoachSessionTTL string `env:"COACH_SESSION_TTL" envDefault:"720h"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3200"`

	// Review policy: allow an admin to reverse an approval by re-reviewing
	// an approved registration as rejected. Off unless explicitly enabled.
	ReviewAllowReversal bool `env:"REVIEW_ALLOW_REVERSAL" envDefault:"false"`

	// Share links minted from the coach portal expire after this duration.
	ShareLinkTTL string `env:"SHARE_LINK_TTL" envDefault:"168h"`

	// Kafka (notification outbox publishing)
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Object storage for uploads
	S3Region        string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket        string `env:"S3_BUCKET" envDefault:"rosterup-uploads"`
	S3AccessKeyID   string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey     string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	UploadPublicURL string `env:"UPLOAD_PUBLIC_URL" envDefault:"http://localhost:9000/rosterup-uploads"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
