package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.UseHeartbeat)
	assert.Equal(t, 10, cfg.TimeoutSec)
	assert.False(t, cfg.Authenticated())
}

func TestLoad_FromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
product_ids:
  - ETH-USD
  - BTC-USD
use_heartbeat: true
timeout_sec: 5
api_key: key
api_secret: secret
passphrase: pass
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ETH-USD", "BTC-USD"}, cfg.ProductIDs)
	assert.True(t, cfg.UseHeartbeat)
	assert.Equal(t, 5, cfg.TimeoutSec)
	assert.True(t, cfg.Authenticated())
}

func TestConfig_AuthenticatedRequiresAllThreeCredentials(t *testing.T) {
	cfg := Config{APIKey: "k", APISecret: "s"}
	assert.False(t, cfg.Authenticated(), "passphrase missing")
}
