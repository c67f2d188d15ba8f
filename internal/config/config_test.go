package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/lendera")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoragePostgres, cfg.StorageDriver)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, time.Hour, cfg.ReconcileInterval)
	assert.Equal(t, "0.01", cfg.ReconcileEpsilon.StringFixed(2))
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("RECONCILE_EPSILON", "0")
	t.Setenv("RECONCILE_INTERVAL", "15m")
	t.Setenv("RUN_MIGRATIONS", "false")
	t.Setenv("WORKER_COUNT", "0")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.True(t, cfg.ReconcileEpsilon.IsZero())
	assert.Equal(t, 15*time.Minute, cfg.ReconcileInterval)
	assert.False(t, cfg.RunMigrations)
	assert.Equal(t, 1, cfg.WorkerCount)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": ""}},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "mysql"}},
		{"memory in production", map[string]string{"STORAGE_DRIVER": "memory", "ENVIRONMENT": "production"}},
		{"bad epsilon", map[string]string{"DATABASE_URL": "postgres://x", "RECONCILE_EPSILON": "abc"}},
		{"negative epsilon", map[string]string{"DATABASE_URL": "postgres://x", "RECONCILE_EPSILON": "-0.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
