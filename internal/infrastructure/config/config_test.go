package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "shopstack-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 5*time.Second, cfg.Database.TxTimeout)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "any_record", cfg.Inventory.DeleteGuard)
	assert.Equal(t, int64(10), cfg.Inventory.LowStockThreshold)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SHOPSTACK_DATABASE_HOST", "db.internal")
	t.Setenv("SHOPSTACK_INVENTORY_DELETE_GUARD", "nonzero_only")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "nonzero_only", cfg.Inventory.DeleteGuard)
}

func TestLoad_InvalidDeleteGuard(t *testing.T) {
	t.Setenv("SHOPSTACK_INVENTORY_DELETE_GUARD", "cascade")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory.delete_guard")
}

func TestValidate_ProductionRequirements(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt.secret")
}

func TestValidate_IdleExceedsOpenConns(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Database.MaxOpenConns = 5
	cfg.Database.MaxIdleConns = 10

	err := cfg.validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_idle_conns")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss/word",
		DBName:   "shopstack",
		SSLMode:  "disable",
	}

	dsn := d.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "p%40ss%2Fword")
	assert.Contains(t, dsn, "sslmode=disable")
}
