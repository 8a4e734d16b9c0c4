package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Empty(t, c.Token)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_endpoint_addr":"files:50051","token":"from-json","request_timeout":"5s"}`), 0o600))

	t.Setenv("CONFIG", "")
	t.Setenv(TokenEnvVar, "from-env")
	os.Args = []string{"cli", "-c", path, "-t", "9", "ls"}

	got := LoadConfig()

	want := &Config{ServerEndpointAddr: "files:50051", Token: "from-env", RequestTimeout: 9 * time.Second}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestParseFlags_TokenFlagWins(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cli", "-k", "tok", "-a", "h:1", "get", "abc"}

	cfg := &Config{Token: "env", RequestTimeout: time.Second}
	parseFlags(cfg)

	assert.Equal(t, "tok", cfg.Token)
	assert.Equal(t, "h:1", cfg.ServerEndpointAddr)
	assert.Equal(t, time.Second, cfg.RequestTimeout)
}

func TestParseJson_InvalidPanics(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	os.Args = []string{"cli", "-config", bad}

	require.Panics(t, func() { parseJson(&Config{}) })
}
