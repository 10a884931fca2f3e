package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"p9e.in/towerpro/pkg/blob"
)

// Config is the process configuration, read from .env and the environment.
type Config struct {
	Port string `validate:"required,numeric"`

	DocStore string `validate:"oneof=postgres memory"`
	DBDSN    string `validate:"required_if=DocStore postgres"`

	BlobStore            string `validate:"oneof=local gcs s3"`
	UploadDir            string
	UploadBaseURL        string
	GCSBucket            string `validate:"required_if=BlobStore gcs"`
	GCSCredentialsJSON   string
	StorageAccessBaseURL string `validate:"omitempty,url"`
	S3Bucket             string `validate:"required_if=BlobStore s3"`
	S3Region             string
	S3Endpoint           string `validate:"omitempty,url"`

	RedisAddr     string `validate:"omitempty,hostname_port"`
	RedisPassword string

	PubSubProject         string
	PubSubTopic           string `validate:"required_with=PubSubProject"`
	PubSubCredentialsJSON string

	JWTSecret string `validate:"required"`

	LogLevel  string `validate:"oneof=trace debug info warn warning error"`
	LogFormat string `validate:"oneof=json text"`
}

var validate = validator.New()

// Load reads .env (when present) and the environment. USE_GCS=true or a
// Cloud Run environment (K_SERVICE) selects the gcs blob store unless
// BLOB_STORE says otherwise.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		GetLogger().Info("No .env file found, using system environment variables")
	}

	blobStore := os.Getenv("BLOB_STORE")
	if blobStore == "" {
		blobStore = string(blob.BackendLocal)
		if os.Getenv("USE_GCS") == "true" || os.Getenv("K_SERVICE") != "" {
			blobStore = string(blob.BackendGCS)
		}
	}

	cfg := &Config{
		Port:                  getenv("PORT", "8080"),
		DocStore:              getenv("DOC_STORE", "postgres"),
		DBDSN:                 os.Getenv("DB_DSN"),
		BlobStore:             blobStore,
		UploadDir:             getenv("UPLOAD_DIR", "./uploads"),
		UploadBaseURL:         getenv("UPLOAD_BASE_URL", "/uploads"),
		GCSBucket:             os.Getenv("GCS_BUCKET"),
		GCSCredentialsJSON:    os.Getenv("GCS_CREDENTIALS_JSON"),
		StorageAccessBaseURL:  os.Getenv("STORAGE_ACCESS_BASE_URL"),
		S3Bucket:              os.Getenv("S3_BUCKET"),
		S3Region:              getenv("S3_REGION", os.Getenv("AWS_REGION")),
		S3Endpoint:            os.Getenv("S3_ENDPOINT"),
		RedisAddr:             os.Getenv("REDIS_ADDR"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		PubSubProject:         getenv("PUBSUB_PROJECT", os.Getenv("GOOGLE_CLOUD_PROJECT")),
		PubSubTopic:           os.Getenv("PUBSUB_TOPIC"),
		PubSubCredentialsJSON: os.Getenv("PUBSUB_CREDENTIALS_JSON"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		LogLevel:              strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:             strings.ToLower(getenv("LOG_FORMAT", "json")),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fields []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(fields, ", "))
	}
	return err
}

// Blob maps the storage settings onto the blob package.
func (c *Config) Blob() blob.Config {
	return blob.Config{
		Backend:            blob.Backend(c.BlobStore),
		LocalDir:           c.UploadDir,
		LocalBaseURL:       c.UploadBaseURL,
		GCSBucket:          c.GCSBucket,
		GCSCredentialsJSON: c.GCSCredentialsJSON,
		AccessBaseURL:      c.StorageAccessBaseURL,
		S3Bucket:           c.S3Bucket,
		S3Region:           c.S3Region,
		S3Endpoint:         c.S3Endpoint,
	}
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
