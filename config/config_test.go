package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray config.yaml is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "pto-tracker", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowOrigins)
	assert.Equal(t, "./data/pto.db", cfg.Database.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.False(t, cfg.Balance.FloorCarryover)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chdir(t)
	t.Setenv("PTO_HTTP_PORT", "9090")
	t.Setenv("PTO_DATABASE_PATH", ":memory:")
	t.Setenv("PTO_BALANCE_FLOOR_CARRYOVER", "true")
	t.Setenv("PTO_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.True(t, cfg.Balance.FloorCarryover)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := chdir(t)
	yaml := `
app:
  env: production
http:
  port: "8443"
  shutdown_timeout: 5s
  cors_allow_origins:
    - https://pto.example.com
database:
  path: /var/lib/pto/pto.db
balance:
  floor_carryover: true
  snapshot_interval: 6h
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "8443", cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, []string{"https://pto.example.com"}, cfg.HTTP.CORSAllowOrigins)
	assert.Equal(t, "json", cfg.Log.Format, "production defaults to json logs")
	assert.True(t, cfg.Balance.FloorCarryover)
	assert.Equal(t, 6*time.Hour, cfg.Balance.SnapshotInterval)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	dir := chdir(t)

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = "http" }, "http.port"},
		{"port out of range", func(c *Config) { c.HTTP.Port = "70000" }, "http.port"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"negative snapshot interval", func(c *Config) { c.Balance.SnapshotInterval = -time.Minute }, "snapshot_interval"},
		{"wildcard cors in production", func(c *Config) { c.App.Env = "production" }, "cors_allow_origins"},
		{"memory db in production", func(c *Config) {
			c.App.Env = "production"
			c.HTTP.CORSAllowOrigins = []string{"https://pto.example.com"}
			c.Database.Path = ":memory:"
		}, "database.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
