package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	for key, value := range map[string]string{
		"APP_ENV":               "development",
		"STORAGE_DRIVER":        "memory",
		"JWT_SECRET":            "",
		"REFRESH_SECRET":        "",
		"CORS_ALLOWED_ORIGINS":  "",
		"DATABASE_URL":          "",
		"POSTGRESQL_HOST":       "",
		"STRIPE_SECRET_KEY":     "",
		"STRIPE_WEBHOOK_SECRET": "",
		"SETTLEMENT_CURRENCY":   "USD",
		"ACCESS_TOKEN_TTL":      "15m",
		"RATE_LIMIT_LIMIT":      "10",
	} {
		t.Setenv(key, value)
	}
}

func TestLoad_DevelopmentDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StorageDriverMemory, cfg.StorageDriver)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.NotEqual(t, cfg.JWTSecret, cfg.RefreshSecret)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001"}, cfg.AllowedOrigins)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "usd", cfg.Stripe.SettlementCurrency)
	assert.Contains(t, cfg.DatabaseURL, "gig_marketplace")
}

func TestLoad_ParsesOriginsAndDatabaseParts(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example.com, ,https://b.example.com")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "gig")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "gigs")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "postgres://gig:p%40ss@db:5432/gigs?sslmode=disable", cfg.DatabaseURL)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "unknown storage driver",
			env:  map[string]string{"STORAGE_DRIVER": "sqlite"},
			want: "STORAGE_DRIVER",
		},
		{
			name: "bad duration",
			env:  map[string]string{"ACCESS_TOKEN_TTL": "soon"},
			want: "ACCESS_TOKEN_TTL",
		},
		{
			name: "bad integer",
			env:  map[string]string{"RATE_LIMIT_LIMIT": "many"},
			want: "RATE_LIMIT_LIMIT",
		},
		{
			name: "short secret in production",
			env:  map[string]string{"APP_ENV": "production", "JWT_SECRET": "short"},
			want: "JWT_SECRET",
		},
		{
			name: "memory storage in production",
			env: map[string]string{
				"APP_ENV":               "production",
				"JWT_SECRET":            "0123456789abcdef0123456789abcdef",
				"REFRESH_SECRET":        "fedcba9876543210fedcba9876543210",
				"STRIPE_SECRET_KEY":     "sk_test",
				"STRIPE_WEBHOOK_SECRET": "whsec_test",
			},
			want: "STORAGE_DRIVER=memory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
