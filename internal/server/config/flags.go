package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/storeauth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-g string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-t int      session validity, hours
//	-o int      OTP validity, minutes
//	-r string   Redis address for the rate limiter
//	-l string   log level
//	-dev        development mode
//
// Only these flags are taken from os.Args (flagx.FilterArgs), so -c and
// -env-file handled elsewhere do not collide.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-t", "-o", "-r", "-l", "-dev"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port to run gRPC health server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	sessionHours := fs.Int("t", int(config.SessionValidityDuration.Hours()), "session validity (in hours)")
	otpMinutes := fs.Int("o", int(config.OTPValidityDuration.Minutes()), "otp validity (in minutes)")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address for rate limiting")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.DevMode, "dev", config.DevMode, "development mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionHours) * time.Hour
	config.OTPValidityDuration = time.Duration(*otpMinutes) * time.Minute
}
