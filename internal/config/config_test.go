package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.BearerToken = "tok"
	cfg.ConnectOnStart = true
	cfg.DB = DBConfig{
		Driver:   DBDriverPostgres,
		Host:     "pg.local",
		Port:     IntPtr(5432),
		Database: StringPtr("shop"),
		Username: "app",
		Password: "secret",
	}
	require.NoError(t, SaveTo(p, cfg))

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")

	got, err := LoadFrom(p)
	require.NoError(t, err)
	want := cfg
	want.DB.Password = ""
	assert.Equal(t, want, got)
}

func TestLoadFromMissing(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFromKeepsDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte("bearerToken: abc\n"), 0o600))

	cfg, err := LoadFrom(p)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.BearerToken)
	assert.Equal(t, Default().APIListen, cfg.APIListen)
	assert.Equal(t, DBDriverMySQL, cfg.DB.Driver)
	assert.Nil(t, cfg.DB.Port)
	assert.Nil(t, cfg.DB.Database)
}

func TestLoadFileEnvOverrides(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	body := "apiListen: 0.0.0.0:9000\nbearerToken: fromfile\ndb:\n  driver: mssql\n  host: sql.local\n  username: sa\n"
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))

	t.Setenv("SQLBRIDGE_BEARERTOKEN", "fromenv")
	t.Setenv("SQLBRIDGE_DB_PASSWORD", "pw")
	t.Setenv("SQLBRIDGE_DB_PORT", "1433")

	cfg, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.APIListen)
	assert.Equal(t, "fromenv", cfg.BearerToken)
	assert.Equal(t, DBDriverMSSQL, cfg.DB.Driver)
	assert.Equal(t, "sql.local", cfg.DB.Host)
	assert.Equal(t, "sa", cfg.DB.Username)
	assert.Equal(t, "pw", cfg.DB.Password)
	require.NotNil(t, cfg.DB.Port)
	assert.Equal(t, 1433, *cfg.DB.Port)
	assert.Nil(t, cfg.DB.Database)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.BearerToken = "tok"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"no listen", func(c *Config) { c.APIListen = "" }},
		{"no port", func(c *Config) { c.APIListen = "127.0.0.1" }},
		{"no host", func(c *Config) { c.APIListen = ":8080" }},
		{"bad port", func(c *Config) { c.APIListen = "127.0.0.1:99999" }},
		{"no token", func(c *Config) { c.BearerToken = " " }},
		{"bad driver", func(c *Config) { c.DB.Driver = "oracle" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestIsKnownDriver(t *testing.T) {
	for _, d := range DBDriverValues() {
		assert.True(t, IsKnownDriver(d))
	}
	assert.False(t, IsKnownDriver("oracle"))
	assert.Equal(t, []string{"mysql", "postgres", "mssql", "sqlite"}, DBDriverOptions())
}
