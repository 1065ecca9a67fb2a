// Package config handles loading and managing Tidemark configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Reference table backends.
const (
	SourceLocal    = "local"
	SourceS3       = "s3"
	SourceGCS      = "gcs"
	SourceAzure    = "azure"
	SourcePostgres = "postgres"
)

// Output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Config is the top-level configuration for Tidemark.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Assessment AssessmentConfig `yaml:"assessment"`
	Output     OutputConfig     `yaml:"output"`
}

// DataConfig selects where the reference score tables are read from.
type DataConfig struct {
	Source    string         `yaml:"source"`
	Dir       string         `yaml:"dir"` // root directory for the local source
	CacheSize int            `yaml:"cache_size"`
	S3        S3Config       `yaml:"s3"`
	GCS       GCSConfig      `yaml:"gcs"`
	Azure     AzureConfig    `yaml:"azure"`
	Postgres  PostgresConfig `yaml:"postgres"`
}

// S3Config holds settings for S3 or S3-compatible stores like MinIO.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"-"`
	SecretKey string `yaml:"-"`
}

// GCSConfig holds settings for Google Cloud Storage.
type GCSConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// AzureConfig holds settings for Azure Blob Storage.
type AzureConfig struct {
	AccountURL string `yaml:"account_url"`
	Container  string `yaml:"container"`
	Prefix     string `yaml:"prefix"`
}

// PostgresConfig holds the reference table database settings.
type PostgresConfig struct {
	URL string `yaml:"url"`
}

// AssessmentConfig controls assessment behavior.
type AssessmentConfig struct {
	Workers int `yaml:"workers"`
}

// OutputConfig controls how results are rendered.
type OutputConfig struct {
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Source:    SourceLocal,
			Dir:       "data",
			CacheSize: 20,
		},
		Assessment: AssessmentConfig{
			Workers: 4,
		},
		Output: OutputConfig{
			Format: FormatText,
		},
	}
}

// Load reads a config file from the given path and applies environment
// overrides. If the file does not exist, the defaults are used.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides data source settings from the environment.
func (c *Config) ApplyEnv() {
	setString(&c.Data.Source, "TIDEMARK_DATA_SOURCE")
	setString(&c.Data.Dir, "TIDEMARK_DATA_DIR")
	setString(&c.Data.S3.Bucket, "TIDEMARK_S3_BUCKET")
	setString(&c.Data.S3.Region, "TIDEMARK_S3_REGION")
	setString(&c.Data.S3.Endpoint, "TIDEMARK_S3_ENDPOINT")
	setString(&c.Data.S3.AccessKey, "AWS_ACCESS_KEY_ID")
	setString(&c.Data.S3.SecretKey, "AWS_SECRET_ACCESS_KEY")
	setString(&c.Data.GCS.Bucket, "TIDEMARK_GCS_BUCKET")
	setString(&c.Data.Azure.AccountURL, "TIDEMARK_AZURE_ACCOUNT_URL")
	setString(&c.Data.Azure.Container, "TIDEMARK_AZURE_CONTAINER")
	setString(&c.Data.Postgres.URL, "TIDEMARK_DATABASE_URL")

	if v := os.Getenv("TIDEMARK_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Assessment.Workers = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Data.Source {
	case SourceLocal:
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir is required for the local source")
		}
	case SourceS3:
		if c.Data.S3.Bucket == "" {
			return fmt.Errorf("data.s3.bucket is required for the s3 source")
		}
	case SourceGCS:
		if c.Data.GCS.Bucket == "" {
			return fmt.Errorf("data.gcs.bucket is required for the gcs source")
		}
	case SourceAzure:
		if c.Data.Azure.AccountURL == "" || c.Data.Azure.Container == "" {
			return fmt.Errorf("data.azure.account_url and data.azure.container are required for the azure source")
		}
	case SourcePostgres:
		if c.Data.Postgres.URL == "" {
			return fmt.Errorf("data.postgres.url is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown data source %q", c.Data.Source)
	}

	switch c.Output.Format {
	case FormatText, FormatJSON, FormatMarkdown:
	default:
		return fmt.Errorf("unknown output format %q", c.Output.Format)
	}
	if c.Assessment.Workers < 1 {
		return fmt.Errorf("assessment.workers must be positive, got %d", c.Assessment.Workers)
	}
	return nil
}

// FindConfigFile looks for .tidemark/config.yaml in the given directory
// and its parents, returning the path if found, or "" if not.
func FindConfigFile(dir string) string {
	for {
		candidate := filepath.Join(dir, ".tidemark", "config.yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
