package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv copies variables from the given .env files into the process
// environment. Variables already set win. A missing file is not an error.
func loadDotEnv(paths ...string) {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			panic(err)
		}
	}
}

// parseEnv overlays Config with environment variables. Names follow the
// deployment convention (POSTGRES_*, SECRET_KEY_TOKEN, ALGORITHM, SMTP_*).
// Unset variables leave the current value untouched; malformed numbers panic.
func parseEnv(c *Config) {
	setString(&c.EndpointAddrHTTP, "HTTP_ADDRESS")
	setBool(&c.Debug, "DEBUG")
	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = splitList(v)
	}

	setString(&c.DatabaseDSN, "DATABASE_DSN")
	setString(&c.DatabaseHost, "POSTGRES_HOST")
	setString(&c.DatabasePort, "POSTGRES_PORT")
	setString(&c.DatabaseUser, "POSTGRES_USER")
	setString(&c.DatabasePassword, "POSTGRES_PASSWORD")
	setString(&c.DatabaseName, "POSTGRES_DATABASE")

	setString(&c.SecretKey, "SECRET_KEY_TOKEN")
	setString(&c.SigningAlgorithm, "ALGORITHM")
	if v, ok := os.LookupEnv("ACCESS_TOKEN_EXPIRE_MINUTES"); ok {
		c.AccessTokenValidityDuration = time.Duration(mustAtoi("ACCESS_TOKEN_EXPIRE_MINUTES", v)) * time.Minute
	}

	setString(&c.SMTPHost, "SMTP_SERVER")
	if v, ok := os.LookupEnv("SMTP_PORT"); ok {
		c.SMTPPort = mustAtoi("SMTP_PORT", v)
	}
	setString(&c.SMTPUser, "SMTP_USERNAME")
	setString(&c.SMTPPassword, "SMTP_PASSWORD")
	setString(&c.SMTPFrom, "SMTP_FROM")

	setString(&c.S3RootUser, "S3_ACCESS_KEY")
	setString(&c.S3RootPassword, "S3_SECRET_KEY")
	setString(&c.S3Bucket, "S3_BUCKET")
	setString(&c.S3Region, "S3_REGION")
	setString(&c.S3BaseEndpoint, "S3_ENDPOINT")
	setString(&c.S3PublicBaseURL, "S3_PUBLIC_URL")
	if v, ok := os.LookupEnv("STORAGE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic("STORAGE_TIMEOUT: " + err.Error())
		}
		c.StorageTimeout = d
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(key + ": " + err.Error())
		}
		*dst = b
	}
}

func mustAtoi(key, v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		panic(key + ": " + err.Error())
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
