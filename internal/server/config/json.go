package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/filesmanager/internal/flagx"
	"github.com/dmitrijs2005/filesmanager/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "30s" and integer nanoseconds are accepted.
// Keys missing from the file keep the value already present in Config.
type JsonConfig struct {
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	MetricsAddr             string         `json:"metrics_addr"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	AuthMode                string         `json:"auth_mode"`
	AuthCacheSize           int            `json:"auth_cache_size"`
	AuthCacheTTL            timex.Duration `json:"auth_cache_ttl"`
	BlobBackend             string         `json:"blob_backend"`
	FolderPath              string         `json:"folder_path"`
	S3AccessKey             string         `json:"s3_access_key"`
	S3SecretKey             string         `json:"s3_secret_key"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
	S3Prefix                string         `json:"s3_prefix"`
	PageSize                int            `json:"page_size"`
	QueueMaxAttempts        int            `json:"queue_max_attempts"`
	VisibilityTimeout       timex.Duration `json:"queue_visibility_timeout"`
	PollInterval            timex.Duration `json:"queue_poll_interval"`
	WorkerCount             int            `json:"worker_count"`
	JobTimeout              timex.Duration `json:"job_timeout"`
	LogLevel                string         `json:"log_level"`
}

func toJson(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:        c.EndpointAddrGRPC,
		MetricsAddr:             c.MetricsAddr,
		DatabaseDSN:             c.DatabaseDSN,
		SecretKey:               c.SecretKey,
		SessionValidityDuration: timex.Duration{Duration: c.SessionValidityDuration},
		AuthMode:                c.AuthMode,
		AuthCacheSize:           c.AuthCacheSize,
		AuthCacheTTL:            timex.Duration{Duration: c.AuthCacheTTL},
		BlobBackend:             c.BlobBackend,
		FolderPath:              c.FolderPath,
		S3AccessKey:             c.S3AccessKey,
		S3SecretKey:             c.S3SecretKey,
		S3Bucket:                c.S3Bucket,
		S3Region:                c.S3Region,
		S3BaseEndpoint:          c.S3BaseEndpoint,
		S3Prefix:                c.S3Prefix,
		PageSize:                c.PageSize,
		QueueMaxAttempts:        c.QueueMaxAttempts,
		VisibilityTimeout:       timex.Duration{Duration: c.VisibilityTimeout},
		PollInterval:            timex.Duration{Duration: c.PollInterval},
		WorkerCount:             c.WorkerCount,
		JobTimeout:              timex.Duration{Duration: c.JobTimeout},
		LogLevel:                c.LogLevel,
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.MetricsAddr = j.MetricsAddr
	c.DatabaseDSN = j.DatabaseDSN
	c.SecretKey = j.SecretKey
	c.SessionValidityDuration = j.SessionValidityDuration.Duration
	c.AuthMode = j.AuthMode
	c.AuthCacheSize = j.AuthCacheSize
	c.AuthCacheTTL = j.AuthCacheTTL.Duration
	c.BlobBackend = j.BlobBackend
	c.FolderPath = j.FolderPath
	c.S3AccessKey = j.S3AccessKey
	c.S3SecretKey = j.S3SecretKey
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.S3Prefix = j.S3Prefix
	c.PageSize = j.PageSize
	c.QueueMaxAttempts = j.QueueMaxAttempts
	c.VisibilityTimeout = j.VisibilityTimeout.Duration
	c.PollInterval = j.PollInterval.Duration
	c.WorkerCount = j.WorkerCount
	c.JobTimeout = j.JobTimeout.Duration
	c.LogLevel = j.LogLevel
}

// parseJson loads configuration values from the JSON file named by -c/-config
// (or the CONFIG environment variable) into config. No file means no change.
// An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := toJson(config)
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}
