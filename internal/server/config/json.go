package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/flagx"
	"github.com/dmitrijs2005/storeauth/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file. Duration
// fields accept "5m" style strings or integer nanoseconds (timex.Duration).
// Only keys present in the file override the current values.
type JsonConfig struct {
	EndpointAddrHTTP        *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC        *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	LogLevel                *string         `json:"log_level"`
	DevMode                 *bool           `json:"dev_mode"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	OTPValidityDuration     *timex.Duration `json:"otp_validity_duration"`
	AdminEmails             []string        `json:"admin_emails"`
	HashAlgorithm           *string         `json:"hash_algorithm"`
	MailSink                *string         `json:"mail_sink"`
	MailFrom                *string         `json:"mail_from"`
	MailFromName            *string         `json:"mail_from_name"`
	SMTPHost                *string         `json:"smtp_host"`
	SMTPPort                *int            `json:"smtp_port"`
	SMTPUser                *string         `json:"smtp_user"`
	SMTPPassword            *string         `json:"smtp_password"`
	S3RootUser              *string         `json:"s3_root_user"`
	S3RootPassword          *string         `json:"s3_root_password"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	RedisAddr               *string         `json:"redis_addr"`
	RedisPassword           *string         `json:"redis_password"`
	RedisDB                 *int            `json:"redis_db"`
	RateLimitMax            *int            `json:"rate_limit_max"`
	RateLimitWindow         *timex.Duration `json:"rate_limit_window"`
	CORSOrigins             []string        `json:"cors_origins"`
	HealthCheckInterval     *timex.Duration `json:"health_check_interval"`
}

// parseJson loads the file named by -c/-config into config. Without the flag
// nothing happens. An unreadable file or invalid JSON panics: a broken config
// file must stop the process at start-up.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.DevMode != nil {
		config.DevMode = *c.DevMode
	}
	setDuration(&config.SessionValidityDuration, c.SessionValidityDuration)
	setDuration(&config.OTPValidityDuration, c.OTPValidityDuration)
	if c.AdminEmails != nil {
		config.AdminEmails = c.AdminEmails
	}
	setString(&config.HashAlgorithm, c.HashAlgorithm)
	setString(&config.MailSink, c.MailSink)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.MailFromName, c.MailFromName)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	setInt(&config.RateLimitMax, c.RateLimitMax)
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)
	if c.CORSOrigins != nil {
		config.CORSOrigins = c.CORSOrigins
	}
	setDuration(&config.HealthCheckInterval, c.HealthCheckInterval)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
