package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/napieracademy/sitemap-manager/internal/config"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8060
database:
  host: "localhost"
  port: 5432
  user: "sitemap"
  password: "secret"
  dbname: "sitemap_manager"
auth:
  jwt_secret: "config-test-secret"
sitemap:
  base_url: "https://example.com"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8060, cfg.Server.Port)
	assert.Equal(t, "sitemap", cfg.Database.User)
	assert.Equal(t, "https://example.com", cfg.Sitemap.BaseURL)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "public", cfg.Sitemap.PublicDir)
	assert.Equal(t, "sitemap.xml", cfg.Sitemap.FileName)
	assert.Equal(t, "https://example.com/sitemap.xml", cfg.Sitemap.PublishedURL)
	assert.Equal(t, 30*time.Second, cfg.Sitemap.FetchTimeout)
	assert.Equal(t, 10*time.Minute, cfg.Sitemap.LockTTL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Scheduler.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_PASSWORD", "env-secret")
	t.Setenv("SITEMAP_BASE_URL", "https://staging.example.com")
	t.Setenv("REDIS_ENABLED", "yes")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := config.Load(writeConfig(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "env-secret", cfg.Database.Password)
	assert.Equal(t, "https://staging.example.com", cfg.Sitemap.BaseURL)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "missing database user",
			mutate:  func(c *config.Config) { c.Database.User = "" },
			wantErr: "database.user is required",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *config.Config) { c.Auth.JWTSecret = "" },
			wantErr: "auth.jwt_secret is required",
		},
		{
			name:    "missing base url",
			mutate:  func(c *config.Config) { c.Sitemap.BaseURL = "" },
			wantErr: "sitemap.base_url is required",
		},
		{
			name:    "trailing slash on base url",
			mutate:  func(c *config.Config) { c.Sitemap.BaseURL = "https://example.com/" },
			wantErr: "must not end with a slash",
		},
		{
			name: "scheduler enabled without spec",
			mutate: func(c *config.Config) {
				c.Scheduler.Enabled = true
				c.Scheduler.Spec = ""
			},
			wantErr: "scheduler.spec is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, validYAML))
			require.NoError(t, err)

			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "config.yml", config.GetConfigPath("config.yml"))

	t.Setenv("CONFIG_PATH", "/etc/sitemap/config.yml")
	assert.Equal(t, "/etc/sitemap/config.yml", config.GetConfigPath("config.yml"))
}
