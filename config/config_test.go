package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "coincap", cfg.Price.Provider)
	assert.Equal(t, 60*time.Second, cfg.Price.CacheTTL.Std())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "portfolio.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[app]
environment = "production"

[server]
port = "9090"
read_timeout = "5s"

[price]
provider = "mock"
cache_ttl = "2m"
`), 0o644))

	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := Load(filepath.Join(dir, "missing.toml"), path)
	require.NoError(t, err)

	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "9191", cfg.Server.Port, "env overrides file")
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Std())
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout.Std(), "unset keys keep defaults")
	assert.Equal(t, "mock", cfg.Price.Provider)
	assert.Equal(t, 2*time.Minute, cfg.Price.CacheTTL.Std())
	assert.Equal(t, "memory", cfg.Database.Driver)
}

func TestLoadRejectsBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[server]
read_timeout = "soon"
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.Price.Provider = "coingecko" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "postgres" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: true},
		{name: "memory without path", mutate: func(c *Config) { c.Database.Driver = "memory"; c.Database.Path = "" }},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = "70000" }, wantErr: true},
		{name: "port not a number", mutate: func(c *Config) { c.Server.Port = "http" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
