package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nocturnalx/simg-client/internal/config"
	"github.com/Nocturnalx/simg-client/mirror"
)

const sampleYAML = `
base_url: https://images.example.com/
api_key: file-key
replication_mode: async
read_strategy: round_robin
replicas:
  minio:
    enabled: true
    endpoint: http://localhost:9000
    access_key: minio-user
    secret_key: minio-pass
    folders: [avatars, banners]
  azblob:
    enabled: false
    connection_string: UseDevelopmentStorage=true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoad_File verifies that every section of a YAML file is decoded.
func TestLoad_File(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://images.example.com/", cfg.BaseURL)
	assert.Equal(t, "file-key", cfg.APIKey)

	minio := cfg.Replicas.MinIO
	assert.True(t, minio.Enabled)
	assert.Equal(t, "http://localhost:9000", minio.Endpoint)
	assert.Equal(t, "minio-user", minio.AccessKey)
	assert.Equal(t, "minio-pass", minio.SecretKey)
	assert.Equal(t, []string{"avatars", "banners"}, minio.Folders)

	assert.False(t, cfg.Replicas.AzBlob.Enabled)
	assert.Equal(t, "UseDevelopmentStorage=true", cfg.Replicas.AzBlob.ConnectionString)
	assert.False(t, cfg.Replicas.S3.Enabled)
	assert.True(t, cfg.HasReplicas())

	mode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, mirror.ASYNC_REPLICATION, mode)

	strategy, err := cfg.Strategy()
	require.NoError(t, err)
	assert.Equal(t, mirror.ROUND_ROBIN, strategy)
}

// TestLoad_EnvOverridesFile verifies that SIMG_* variables take precedence over the file.
func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("SIMG_API_KEY", "env-key")
	t.Setenv("SIMG_REPLICAS_MINIO_ENDPOINT", "http://minio:9000")

	cfg, err := config.Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIKey)
	assert.Equal(t, "http://minio:9000", cfg.Replicas.MinIO.Endpoint)
	assert.Equal(t, "https://images.example.com/", cfg.BaseURL)
}

// TestLoad_EnvOnly verifies that a missing default config file is not an error and that
// the environment alone can configure the client.
func TestLoad_EnvOnly(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SIMG_BASE_URL", "http://localhost:8080")
	t.Setenv("SIMG_API_KEY", "env-key")
	t.Setenv("SIMG_REPLICAS_S3_ENABLED", "true")

	cfg, err := config.Load("")
	require.NoError(t, err)

	client := cfg.ClientConfig()
	assert.Equal(t, "http://localhost:8080", client.BaseURL)
	assert.Equal(t, "env-key", client.APIKey)
	assert.True(t, cfg.Replicas.S3.Enabled)

	mode, err := cfg.Mode()
	require.NoError(t, err)
	assert.Equal(t, mirror.SYNC_REPLICATION, mode)

	strategy, err := cfg.Strategy()
	require.NoError(t, err)
	assert.Equal(t, mirror.READ_PRIMARY_FIRST, strategy)
}

// TestLoad_MissingFile verifies that an explicit path that does not exist fails.
func TestLoad_MissingFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))

	require.Nil(t, cfg)
	assert.ErrorContains(t, err, "Failed to load config")
}

// TestLoad_Malformed verifies that invalid YAML is reported.
func TestLoad_Malformed(t *testing.T) {
	_, err := config.Load(writeConfig(t, "base_url: [unterminated"))

	assert.ErrorContains(t, err, "Failed to load config")
}

// TestConfig_UnknownModes verifies that unknown mode names are rejected.
func TestConfig_UnknownModes(t *testing.T) {
	cfg := &config.Config{ReplicationMode: "eventually", ReadStrategy: "random"}

	_, err := cfg.Mode()
	assert.ErrorContains(t, err, `unknown replication_mode "eventually"`)

	_, err = cfg.Strategy()
	assert.ErrorContains(t, err, `unknown read_strategy "random"`)

	assert.False(t, cfg.HasReplicas())
}
