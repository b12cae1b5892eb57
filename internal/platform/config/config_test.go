package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, int32(2), cfg.AmountScale)
	assert.Equal(t, 5*time.Second, cfg.PostingLockTimeout)
	assert.Equal(t, 500, cfg.LedgerPageSize)
	assert.Equal(t, uint(5), cfg.NotifierMaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.NotEmpty(t, cfg.JWTSecret)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("PGSQL_URL", "postgres://ledger@localhost/ledger")
	t.Setenv("AMOUNT_SCALE", "4")
	t.Setenv("POSTING_LOCK_TIMEOUT", "750ms")
	t.Setenv("JWT_ISSUER", "ledger-auth")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, int32(4), cfg.AmountScale)
	assert.Equal(t, 750*time.Millisecond, cfg.PostingLockTimeout)
	assert.Equal(t, "ledger-auth", cfg.JWTIssuer)
}

func TestLoadConfig_Rejections(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "postgres without url", env: map[string]string{"STORAGE_DRIVER": "postgres", "PGSQL_URL": ""}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "bolt"}},
		{name: "bad lock timeout", env: map[string]string{"STORAGE_DRIVER": "memory", "POSTING_LOCK_TIMEOUT": "soon"}},
		{name: "negative scale", env: map[string]string{"STORAGE_DRIVER": "memory", "AMOUNT_SCALE": "-1"}},
		{name: "missing secret in production", env: map[string]string{"STORAGE_DRIVER": "memory", "IS_PRODUCTION": "true", "JWT_SECRET": ""}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
