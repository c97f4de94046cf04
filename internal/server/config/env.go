package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/flagx"
	"github.com/joho/godotenv"
)

// envSource resolves a key from the process environment first and from the
// .env file second, the same precedence godotenv.Load gives.
type envSource struct {
	file map[string]string
}

func newEnvSource(path string) envSource {
	if path == "" {
		path = ".env"
	}
	file, err := godotenv.Read(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("config: cannot read %s: %v", path, err)
		}
		file = map[string]string{}
	}
	return envSource{file: file}
}

func (e envSource) lookup(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := e.file[key]
	return v, ok
}

func (e envSource) str(key string, dst *string) {
	if v, ok := e.lookup(key); ok && v != "" {
		*dst = v
	}
}

func (e envSource) integer(key string, dst *int) {
	if v, ok := e.lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func (e envSource) duration(key string, dst *time.Duration) {
	if v, ok := e.lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

// parseEnv overlays values from the environment and the .env file (path from
// -env-file, default ".env").
//
// Variable names follow the storefront's existing deployment: JWT_SECRET,
// ADMIN_EMAIL1/ADMIN_EMAIL2, APP_EMAIL/APP_PASSWORD and NODE_ENV=development
// keep working unchanged.
func parseEnv(c *Config) {
	env := newEnvSource(flagx.DotenvFlags())

	env.str("HTTP_ADDR", &c.EndpointAddrHTTP)
	if port, ok := env.lookup("PORT"); ok && port != "" {
		c.EndpointAddrHTTP = ":" + port
	}
	env.str("GRPC_ADDR", &c.EndpointAddrGRPC)
	env.str("DATABASE_DSN", &c.DatabaseDSN)
	env.str("JWT_SECRET", &c.SecretKey)
	env.str("LOG_LEVEL", &c.LogLevel)
	env.duration("SESSION_TTL", &c.SessionValidityDuration)
	env.duration("OTP_TTL", &c.OTPValidityDuration)
	env.str("HASH_ALGORITHM", &c.HashAlgorithm)

	if v, ok := env.lookup("NODE_ENV"); ok {
		c.DevMode = v == "development"
	}
	if v, ok := env.lookup("APP_ENV"); ok {
		c.DevMode = v == "development"
	}

	var admins []string
	for _, key := range []string{"ADMIN_EMAIL1", "ADMIN_EMAIL2"} {
		if v, ok := env.lookup(key); ok && strings.TrimSpace(v) != "" {
			admins = append(admins, strings.ToLower(strings.TrimSpace(v)))
		}
	}
	if v, ok := env.lookup("ADMIN_EMAILS"); ok {
		for _, a := range splitList(v) {
			admins = append(admins, strings.ToLower(a))
		}
	}
	if len(admins) > 0 {
		c.AdminEmails = admins
	}

	env.str("SMTP_HOST", &c.SMTPHost)
	env.integer("SMTP_PORT", &c.SMTPPort)
	env.str("APP_EMAIL", &c.SMTPUser)
	env.str("APP_PASSWORD", &c.SMTPPassword)
	env.str("MAIL_FROM", &c.MailFrom)
	env.str("MAIL_FROM_NAME", &c.MailFromName)
	if c.MailFrom == "" {
		c.MailFrom = c.SMTPUser
	}
	env.str("MAIL_SINK", &c.MailSink)
	if _, ok := env.lookup("MAIL_SINK"); !ok && c.SMTPUser != "" && c.SMTPPassword != "" {
		c.MailSink = "smtp"
	}

	env.str("S3_ROOT_USER", &c.S3RootUser)
	env.str("S3_ROOT_PASSWORD", &c.S3RootPassword)
	env.str("S3_BUCKET", &c.S3Bucket)
	env.str("S3_REGION", &c.S3Region)
	env.str("S3_BASE_ENDPOINT", &c.S3BaseEndpoint)

	env.str("REDIS_ADDR", &c.RedisAddr)
	env.str("REDIS_PASSWORD", &c.RedisPassword)
	env.integer("REDIS_DB", &c.RedisDB)
	env.integer("RATE_LIMIT_MAX", &c.RateLimitMax)
	env.duration("RATE_LIMIT_WINDOW", &c.RateLimitWindow)

	if v, ok := env.lookup("CORS_ORIGINS"); ok {
		c.CORSOrigins = splitList(v)
	}
	env.duration("HEALTH_CHECK_INTERVAL", &c.HealthCheckInterval)
}
