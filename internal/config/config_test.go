package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("SHOP_CURRENCY", "")
	t.Setenv("GO_ENV", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 5432, cfg.PostgresPort)
	assert.Equal(t, "USD", cfg.Currency.String())
	assert.True(t, cfg.IsDev())
	assert.Contains(t, cfg.DSN(), "port=5432")
	assert.Contains(t, cfg.DSN(), "sslmode=disable")
}

func TestLoad_DatabaseURLWins(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/shop")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/shop", cfg.DSN())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			env:     map[string]string{"JWT_SECRET": ""},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "bad postgres port",
			env:     map[string]string{"JWT_SECRET": "s", "POSTGRES_PORT": "abc"},
			wantErr: "POSTGRES_PORT must be number",
		},
		{
			name:    "bad currency",
			env:     map[string]string{"JWT_SECRET": "s", "SHOP_CURRENCY": "XXXX"},
			wantErr: "SHOP_CURRENCY",
		},
		{
			name:    "bad go env",
			env:     map[string]string{"JWT_SECRET": "s", "GO_ENV": "staging"},
			wantErr: "GO_ENV must be dev or prod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
