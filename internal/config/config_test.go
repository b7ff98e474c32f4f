package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("POSTGRES_DSN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, "payroll-registry", cfg.App.Name)
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 5*time.Minute, cfg.Auth.ChallengeTTL())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "LevelDB")
	t.Setenv("STORE_DATA_DIR", "/var/lib/registry")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("AUTH_CHALLENGE_TTL_SECONDS", "30")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, BackendLevelDB, cfg.Store.Backend)
	assert.Equal(t, "/var/lib/registry", cfg.Store.DataDir)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.Auth.ChallengeTTL())
	assert.False(t, cfg.Postgres.RunMigrations)
}

func TestLoadRejectsBadRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Store: StoreConfig{Backend: BackendMemory},
			Auth:  AuthConfig{JWTSecret: "s"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "memory needs nothing", mutate: func(*Config) {}},
		{
			name:    "leveldb needs a data dir",
			mutate:  func(c *Config) { c.Store.Backend = BackendLevelDB },
			wantErr: "STORE_DATA_DIR",
		},
		{
			name:   "badger with data dir",
			mutate: func(c *Config) { c.Store = StoreConfig{Backend: BackendBadger, DataDir: "d"} },
		},
		{
			name:    "redis needs an address",
			mutate:  func(c *Config) { c.Store.Backend = BackendRedis },
			wantErr: "REDIS_ADDR",
		},
		{
			name:    "postgres needs a dsn",
			mutate:  func(c *Config) { c.Store.Backend = BackendPostgres },
			wantErr: "POSTGRES_DSN",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Store.Backend = "etcd" },
			wantErr: "unknown STORE_BACKEND",
		},
		{
			name:    "empty jwt secret",
			mutate:  func(c *Config) { c.Auth.JWTSecret = "" },
			wantErr: "AUTH_JWT_SECRET",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
