package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, "first_access", cfg.RedisKeyPrefix)
	assert.Equal(t, 6, cfg.TokenLength)
	assert.Equal(t, 3, cfg.TokenAttemptLimit)
	assert.Equal(t, 10, cfg.TokenExpirationMinutes)
	assert.Equal(t, 3*time.Second, cfg.ExternalTimeout())
	assert.Equal(t, 5*time.Minute, cfg.ProofTTL())
	assert.Equal(t, "verification-audit", cfg.AuditKafkaTopic)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_LENGTH", "8")
	t.Setenv("TOKEN_ATTEMPT_LIMIT", "5")
	t.Setenv("SERVER_ADDR", ":9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.TokenLength)
	assert.Equal(t, 5, cfg.TokenAttemptLimit)
	assert.Equal(t, ":9090", cfg.ServerAddr)
}

func TestLoadRejectsInvalidPolicy(t *testing.T) {
	t.Setenv("TOKEN_LENGTH", "4")
	t.Setenv("TOKEN_ATTEMPT_LIMIT", "10")

	_, err := Load()
	require.Error(t, err)
}

func TestTokenConfigSnapshot(t *testing.T) {
	cfg := Config{TokenLength: 6, TokenAttemptLimit: 3, TokenExpirationMinutes: 15}
	tc := cfg.TokenConfig()

	assert.Equal(t, 6, tc.Length)
	assert.Equal(t, 3, tc.AttemptLimit)
	assert.Equal(t, 15, tc.ExpirationMinutes)
}

func TestKafkaBrokers(t *testing.T) {
	assert.Nil(t, Config{}.KafkaBrokers())
	assert.Equal(t, []string{"a:9092", "b:9092"},
		Config{AuditKafkaBrokers: " a:9092, b:9092 ,"}.KafkaBrokers())
}

func TestValidate(t *testing.T) {
	valid := Config{
		TokenLength:            6,
		TokenAttemptLimit:      3,
		TokenExpirationMinutes: 10,
		ExternalTimeoutSeconds: 3,
		ProofTTLMinutes:        5,
	}
	require.NoError(t, valid.Validate())

	noTimeout := valid
	noTimeout.ExternalTimeoutSeconds = 0
	require.Error(t, noTimeout.Validate())

	noProofTTL := valid
	noProofTTL.ProofTTLMinutes = 0
	require.Error(t, noProofTTL.Validate())
}
