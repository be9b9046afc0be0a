// Package config loads service configuration from environment variables or
// an optional .env file and validates the token policy at startup so an
// insecure combination never reaches the engine.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"firstaccess/internal/verification/models"
)

// Config is the full service configuration. Token policy values are
// snapshotted into each verification record at creation time; changing them
// here never affects in-flight tokens.
type Config struct {
	ServerAddr string `mapstructure:"SERVER_ADDR"`

	RedisURL       string `mapstructure:"REDIS_URL"`
	RedisKeyPrefix string `mapstructure:"REDIS_KEY_PREFIX"`

	TokenLength            int `mapstructure:"TOKEN_LENGTH"`
	TokenAttemptLimit      int `mapstructure:"TOKEN_ATTEMPT_LIMIT"`
	TokenExpirationMinutes int `mapstructure:"TOKEN_EXPIRATION_MINUTES"`
	ExternalTimeoutSeconds int `mapstructure:"EXTERNAL_TIMEOUT_SECONDS"`

	DirectoryURL string `mapstructure:"DIRECTORY_URL"`
	TicketURL    string `mapstructure:"TICKET_URL"`

	ProofSigningKey string `mapstructure:"PROOF_SIGNING_KEY"`
	ProofTTLMinutes int    `mapstructure:"PROOF_TTL_MINUTES"`

	AuditDatabaseURL  string `mapstructure:"AUDIT_DATABASE_URL"`
	AuditKafkaBrokers string `mapstructure:"AUDIT_KAFKA_BROKERS"`
	AuditKafkaTopic   string `mapstructure:"AUDIT_KAFKA_TOPIC"`
}

// TokenConfig returns the policy snapshot new records are created with.
func (c Config) TokenConfig() models.TokenConfig {
	return models.TokenConfig{
		Length:            c.TokenLength,
		AttemptLimit:      c.TokenAttemptLimit,
		ExpirationMinutes: c.TokenExpirationMinutes,
	}
}

// ExternalTimeout bounds every outbound call to the directory and the
// dispatch channel.
func (c Config) ExternalTimeout() time.Duration {
	return time.Duration(c.ExternalTimeoutSeconds) * time.Second
}

// ProofTTL bounds how long a possession proof stays verifiable.
func (c Config) ProofTTL() time.Duration {
	return time.Duration(c.ProofTTLMinutes) * time.Minute
}

// KafkaBrokers splits the comma-separated broker list.
func (c Config) KafkaBrokers() []string {
	if c.AuditKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AuditKafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}

// Load reads configuration and applies defaults, then validates.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_KEY_PREFIX", "first_access")
	v.SetDefault("DIRECTORY_URL", "")
	v.SetDefault("TICKET_URL", "")
	v.SetDefault("PROOF_SIGNING_KEY", "")
	v.SetDefault("AUDIT_DATABASE_URL", "")
	v.SetDefault("AUDIT_KAFKA_BROKERS", "")
	v.SetDefault("TOKEN_LENGTH", 6)
	v.SetDefault("TOKEN_ATTEMPT_LIMIT", 3)
	v.SetDefault("TOKEN_EXPIRATION_MINUTES", models.DefaultExpirationMinutes)
	v.SetDefault("EXTERNAL_TIMEOUT_SECONDS", 3)
	v.SetDefault("PROOF_TTL_MINUTES", 5)
	v.SetDefault("AUDIT_KAFKA_TOPIC", "verification-audit")

	v.AddConfigPath(".")
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine would refuse anyway, plus the
// operational values main depends on.
func (c Config) Validate() error {
	if err := c.TokenConfig().Validate(); err != nil {
		return fmt.Errorf("token policy: %w", err)
	}
	if c.ExternalTimeoutSeconds <= 0 {
		return fmt.Errorf("EXTERNAL_TIMEOUT_SECONDS must be positive")
	}
	if c.ProofTTLMinutes <= 0 {
		return fmt.Errorf("PROOF_TTL_MINUTES must be positive")
	}
	return nil
}
