package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/herostore/internal/flagx"
	"github.com/dmitrijs2005/herostore/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Duration fields accept both "30m" strings and integer nanoseconds.
// Zero values are treated as "not set" and do not override the Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	Debug                       *bool          `json:"debug"`
	AllowedOrigins              []string       `json:"allowed_origins"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	SigningAlgorithm            string         `json:"signing_algorithm"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	SMTPHost                    string         `json:"smtp_host"`
	SMTPPort                    int            `json:"smtp_port"`
	SMTPUser                    string         `json:"smtp_user"`
	SMTPPassword                string         `json:"smtp_password"`
	SMTPFrom                    string         `json:"smtp_from"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	S3PublicBaseURL             string         `json:"s3_public_base_url"`
	StorageTimeout              timex.Duration `json:"storage_timeout"`
}

// parseJson loads the file named by -c/-config (if any) and overlays its
// non-zero values onto config. An unreadable or invalid file panics.
func parseJson(config *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	b, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(b, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	if c.Debug != nil {
		config.Debug = *c.Debug
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.SigningAlgorithm, c.SigningAlgorithm)
	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	overlay(&config.SMTPHost, c.SMTPHost)
	if c.SMTPPort > 0 {
		config.SMTPPort = c.SMTPPort
	}
	overlay(&config.SMTPUser, c.SMTPUser)
	overlay(&config.SMTPPassword, c.SMTPPassword)
	overlay(&config.SMTPFrom, c.SMTPFrom)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	if c.StorageTimeout.Duration > 0 {
		config.StorageTimeout = c.StorageTimeout.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
