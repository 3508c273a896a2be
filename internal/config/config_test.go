package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Connector.MaxRetries)
	assert.Equal(t, time.Second, cfg.Connector.BaseDelay)
	assert.Equal(t, 30*time.Second, cfg.Connector.GetClientCacheTTL())
	assert.Equal(t, "random", cfg.Connector.Selection)
	assert.Equal(t, 5*time.Minute, cfg.Price.GetCacheTTL())
	assert.Equal(t, 3*time.Second, cfg.Tx.RefreshDelay)
	assert.Equal(t, "file", cfg.Wallet.Store)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte("connector:\n  max_retries: 5\n  selection: sequential\nlogger:\n  level: debug\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))
	t.Setenv("MINIWALLET_SERVER_PORT", "9090")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Connector.MaxRetries)
	assert.Equal(t, "sequential", cfg.Connector.Selection)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	bad := *cfg
	bad.Connector.MaxRetries = 0
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Connector.Selection = "round-robin"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Wallet.Store = "postgres"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Events.Transport = "kafka"
	assert.Error(t, bad.Validate())
}
