package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerList(t *testing.T) {
	var cfg Config

	prod, err := cfg.AddServer(Server{Name: " prod ", DB: DBConfig{Host: "db.prod", Username: "app"}})
	require.NoError(t, err)
	assert.NotEmpty(t, prod.ID)
	assert.Equal(t, "prod", prod.Name)

	local, err := cfg.AddServer(Server{Name: "local", DB: DBConfig{Driver: DBDriverSQLite, Host: "local.db"}})
	require.NoError(t, err)
	assert.NotEqual(t, prod.ID, local.ID)
	require.Len(t, cfg.Servers, 2)

	_, err = cfg.AddServer(Server{Name: "PROD", DB: DBConfig{Host: "other"}})
	assert.Error(t, err, "duplicate name")

	prod.DB.Port = IntPtr(3307)
	require.NoError(t, cfg.EditServer(prod))
	got, ok := cfg.ServerByName("Prod")
	require.True(t, ok)
	assert.Equal(t, 3307, *got.DB.Port)

	local.Name = "prod"
	assert.Error(t, cfg.EditServer(local), "rename onto an existing name")

	assert.ErrorIs(t, cfg.EditServer(Server{ID: "nope", Name: "x", DB: DBConfig{Host: "h"}}), ErrServerNotFound)

	require.NoError(t, cfg.DeleteServer(prod.ID))
	assert.ErrorIs(t, cfg.DeleteServer(prod.ID), ErrServerNotFound)
	require.Len(t, cfg.Servers, 1)
	assert.Equal(t, "local", cfg.Servers[0].Name)
}

func TestServerValidation(t *testing.T) {
	var cfg Config
	for _, s := range []Server{
		{Name: "", DB: DBConfig{Host: "h"}},
		{Name: "x", DB: DBConfig{}},
		{Name: "x", DB: DBConfig{Driver: "oracle", Host: "h"}},
	} {
		_, err := cfg.AddServer(s)
		assert.Error(t, err)
	}
	assert.Empty(t, cfg.Servers)
}

func TestSaveDropsServerPasswords(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	_, err := cfg.AddServer(Server{Name: "prod", DB: DBConfig{Host: "db", Username: "app", Password: "hunter2"}})
	require.NoError(t, err)
	require.NoError(t, SaveTo(p, cfg))
	assert.Equal(t, "hunter2", cfg.Servers[0].DB.Password, "caller's copy untouched")

	raw, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")

	got, err := LoadFrom(p)
	require.NoError(t, err)
	require.Len(t, got.Servers, 1)
	assert.Equal(t, "prod", got.Servers[0].Name)
	assert.Equal(t, cfg.Servers[0].ID, got.Servers[0].ID)
	assert.Empty(t, got.Servers[0].DB.Password)

	viaViper, err := LoadFile(p)
	require.NoError(t, err)
	require.Len(t, viaViper.Servers, 1)
	assert.Equal(t, "db", viaViper.Servers[0].DB.Host)
}
