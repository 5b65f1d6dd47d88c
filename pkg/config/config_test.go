package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/ordenes-api/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 10, cfg.Orders.InvoiceMaxRetries)
	assert.Equal(t, "INV", cfg.Orders.InvoiceDefaultPrefix)
	assert.True(t, cfg.Orders.AllowNegativeStock)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, int32(25), cfg.DB.MaxConns)
	assert.Equal(t, 10*time.Second, cfg.HTTP.ReadTimeout)
	assert.False(t, cfg.DB.ForceIPv4)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STOCK_ALLOW_NEGATIVE", "false")
	t.Setenv("INVOICE_MAX_RETRIES", "3")
	t.Setenv("INVOICE_DEFAULT_PREFIX", "FAC")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("IDEMPOTENCY_TTL_HOURS", "2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.False(t, cfg.Orders.AllowNegativeStock)
	assert.Equal(t, 3, cfg.Orders.InvoiceMaxRetries)
	assert.Equal(t, "FAC", cfg.Orders.InvoiceDefaultPrefix)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, 2*time.Hour, cfg.Redis.IdempotencyTTL)
}

func TestLoad_Invalida(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"sin reintentos", map[string]string{"INVOICE_MAX_RETRIES": "0"}, "INVOICE_MAX_RETRIES"},
		{"pool mínimo mayor que máximo", map[string]string{"DB_MIN_CONNS": "30", "DB_MAX_CONNS": "5"}, "pool inválido"},
		{"ttl cero con redis", map[string]string{"REDIS_URL": "redis://r:6379", "IDEMPOTENCY_TTL_HOURS": "0"}, "IDEMPOTENCY_TTL_HOURS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDBConfig_ConnectionString(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:word", DBName: "ordenes", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/ordenes?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
