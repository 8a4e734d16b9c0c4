package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("CONFIG", "")

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":        "www.example:9000",
		"database_dsn":              "files.db",
		"secret_key":                "my_secret_key",
		"session_validity_duration": "2h",
		"auth_mode":                 "jwt",
		"auth_cache_ttl":            "10s",
		"blob_backend":              "s3",
		"folder_path":               "/var/files",
		"s3_bucket":                 "bucket",
		"s3_prefix":                 "blobs",
		"page_size":                 50,
		"queue_max_attempts":        3,
		"queue_visibility_timeout":  "5m",
		"queue_poll_interval":       500000000,
		"job_timeout":               "30s",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "files.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.SessionValidityDuration)
		assert.Equal(t, AuthModeJWT, cfg.AuthMode)
		assert.Equal(t, 10*time.Second, cfg.AuthCacheTTL)
		assert.Equal(t, BlobBackendS3, cfg.BlobBackend)
		assert.Equal(t, "/var/files", cfg.FolderPath)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "blobs", cfg.S3Prefix)
		assert.Equal(t, 50, cfg.PageSize)
		assert.Equal(t, 3, cfg.QueueMaxAttempts)
		assert.Equal(t, 5*time.Minute, cfg.VisibilityTimeout)
		assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
		assert.Equal(t, 30*time.Second, cfg.JobTimeout)
	})

	t.Run("missing keys keep existing values", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"page_size": 10})
		os.Args = []string{"testbin", "-c", partial}

		var cfg Config
		cfg.LoadDefaults()
		parseJson(&cfg)

		assert.Equal(t, 10, cfg.PageSize)
		assert.Equal(t, "/tmp/files_manager", cfg.FolderPath)
		assert.Equal(t, 5, cfg.QueueMaxAttempts)
		assert.Equal(t, time.Minute, cfg.JobTimeout)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{FolderPath: "/keep", PageSize: 20}
		parseJson(cfg)

		assert.Equal(t, &Config{FolderPath: "/keep", PageSize: 20}, cfg)
	})

	t.Run("CONFIG env var is used without flags", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("CONFIG", pathFlag)

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "files.db", cfg.DatabaseDSN)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}

		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
