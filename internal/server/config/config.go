// Package config handles configuration for the auth server, including
// defaults, .env/environment overlay, JSON overlay, and command-line flags.
package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the storeauth server. It is built once
// in main and handed to every component by pointer.
//
// Fields:
//   - EndpointAddrHTTP: bind address of the public HTTP API.
//   - EndpointAddrGRPC: bind address of the gRPC health service.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means the in-memory store.
//   - SecretKey: HMAC secret for signing session JWTs (HS256).
//   - SessionValidityDuration / OTPValidityDuration: token and code lifetimes.
//   - AdminEmails: addresses that are granted the admin role.
//   - DevMode: relaxes cookie attributes for local development.
//   - MailSink: "smtp", "s3", "log" or "" (mail disabled).
//   - RateLimitMax / RateLimitWindow: OTP route throttle per client address.
type Config struct {
	EndpointAddrHTTP string
	EndpointAddrGRPC string
	DatabaseDSN      string
	SecretKey        string
	LogLevel         string
	DevMode          bool

	SessionValidityDuration time.Duration
	OTPValidityDuration     time.Duration
	AdminEmails             []string
	HashAlgorithm           string

	MailSink     string
	MailFrom     string
	MailFromName string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string

	S3RootUser     string
	S3RootPassword string
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string

	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RateLimitMax    int
	RateLimitWindow time.Duration

	CORSOrigins         []string
	HealthCheckInterval time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside local development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":3000"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.LogLevel = "info"
	c.DevMode = false
	c.SessionValidityDuration = 7 * 24 * time.Hour
	c.OTPValidityDuration = 5 * time.Minute
	c.AdminEmails = nil
	c.HashAlgorithm = "bcrypt"
	c.MailSink = ""
	c.MailFromName = "PSR Enterprises"
	c.SMTPHost = "smtp.gmail.com"
	c.SMTPPort = 587
	c.S3Bucket = "mail"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.RedisAddr = ""
	c.RateLimitMax = 3
	c.RateLimitWindow = time.Minute
	c.CORSOrigins = []string{"http://localhost:5173"}
	c.HealthCheckInterval = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from .env/environment, an optional JSON file and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// IsAdminEmail reports whether email (already lowercased) is on the admin allow-list.
func (c *Config) IsAdminEmail(email string) bool {
	if email == "" {
		return false
	}
	for _, a := range c.AdminEmails {
		if strings.ToLower(strings.TrimSpace(a)) == email {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
