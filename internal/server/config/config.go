// Package config handles configuration for the storefront server,
// including defaults, .env and environment variables, a JSON overlay,
// and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Config holds runtime settings for the storefront server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP API.
//   - Debug: enables wildcard CORS and verbose text logging.
//   - AllowedOrigins: CORS origins accepted when Debug is off.
//   - DatabaseDSN: full PostgreSQL DSN (pgx). When empty it is assembled
//     from the Database* parts.
//   - SecretKey / SigningAlgorithm: HMAC secret and algorithm (HS256, HS384,
//     HS512) for access tokens. Do not use the defaults in prod.
//   - AccessTokenValidityDuration: lifetime of tokens issued by POST /token.
//   - SMTP*: outbound mail relay used for verification codes.
//   - S3*: object storage settings; S3PublicBaseURL is the prefix of the
//     public image URLs stored in the database.
//   - StorageTimeout: upper bound for a single object storage call.
type Config struct {
	EndpointAddrHTTP string
	Debug            bool
	AllowedOrigins   []string

	DatabaseDSN      string
	DatabaseHost     string
	DatabasePort     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseName     string

	SecretKey                   string
	SigningAlgorithm            string
	AccessTokenValidityDuration time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string

	S3RootUser      string
	S3RootPassword  string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	S3PublicBaseURL string
	StorageTimeout  time.Duration
}

var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.Debug = false
	c.AllowedOrigins = []string{"http://localhost:3000"}
	c.DatabaseHost = "localhost"
	c.DatabasePort = "5432"
	c.DatabaseUser = "postgres"
	c.DatabasePassword = "postgres"
	c.DatabaseName = "herostore"
	c.SecretKey = "secretKey"
	c.SigningAlgorithm = "HS256"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.SMTPHost = "localhost"
	c.SMTPPort = 587
	c.SMTPFrom = "no-reply@localhost"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "media"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.StorageTimeout = 30 * time.Second
}

// DSN returns DatabaseDSN when set, otherwise a postgres:// URL built from
// the individual connection parts.
func (c *Config) DSN() string {
	if c.DatabaseDSN != "" {
		return c.DatabaseDSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.DatabaseUser, c.DatabasePassword),
		Host:   net.JoinHostPort(c.DatabaseHost, c.DatabasePort),
		Path:   "/" + c.DatabaseName,
	}
	return u.String()
}

// Validate reports settings the server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key must not be empty"))
	}
	if _, ok := supportedAlgorithms[c.SigningAlgorithm]; !ok {
		errs = append(errs, fmt.Errorf("unsupported signing algorithm %q", c.SigningAlgorithm))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.S3Bucket == "" {
		errs = append(errs, errors.New("s3 bucket must not be empty"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from .env and the environment, an optional JSON file, and finally
// command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	loadDotEnv(".env")
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
