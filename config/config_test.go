package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"p9e.in/towerpro/pkg/blob"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DOC_STORE", "memory")
	t.Setenv("BLOB_STORE", "")
	t.Setenv("USE_GCS", "")
	t.Setenv("K_SERVICE", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "local", cfg.BlobStore)
	assert.Equal(t, "./uploads", cfg.UploadDir)
	assert.Equal(t, blob.BackendLocal, cfg.Blob().Backend)
}

func TestLoad_CloudRunImpliesGCS(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DOC_STORE", "memory")
	t.Setenv("BLOB_STORE", "")
	t.Setenv("K_SERVICE", "towerpro")
	t.Setenv("GCS_BUCKET", "towerpro-photos")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gcs", cfg.BlobStore)
	assert.Equal(t, "towerpro-photos", cfg.Blob().GCSBucket)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Port: "8080", DocStore: "memory", BlobStore: "local",
		JWTSecret: "secret", LogLevel: "info", LogFormat: "json",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"postgres needs dsn", func(c *Config) { c.DocStore = "postgres" }, "DBDSN"},
		{"gcs needs bucket", func(c *Config) { c.BlobStore = "gcs" }, "GCSBucket"},
		{"s3 needs bucket", func(c *Config) { c.BlobStore = "s3" }, "S3Bucket"},
		{"unknown store", func(c *Config) { c.DocStore = "mongo" }, "DocStore"},
		{"topic with project", func(c *Config) { c.PubSubProject = "p" }, "PubSubTopic"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWTSecret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigureLogger(t *testing.T) {
	require.NoError(t, ConfigureLogger("debug", "text"))
	assert.Equal(t, "debug", GetLogger().GetLevel().String())
	assert.Error(t, ConfigureLogger("loud", "json"))
	require.NoError(t, ConfigureLogger("info", "json"))
}
