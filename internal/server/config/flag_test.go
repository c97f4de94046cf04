package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", ":8080", "-g", "127.0.0.1:9090", "-d", "db", "-s", "secret",
			"-t", "24", "-o", "10", "-r", "localhost:6379", "-l", "debug", "-dev",
		}, expectPanic: false,
			expected: &Config{
				EndpointAddrHTTP:        ":8080",
				EndpointAddrGRPC:        "127.0.0.1:9090",
				DatabaseDSN:             "db",
				SecretKey:               "secret",
				SessionValidityDuration: 24 * time.Hour,
				OTPValidityDuration:     10 * time.Minute,
				RedisAddr:               "localhost:6379",
				LogLevel:                "debug",
				DevMode:                 true,
			}},
		{name: "foreign flags are ignored", args: []string{"cmd",
			"-c", "cfg.json", "-env-file", "x.env", "-s", "other",
		}, expectPanic: false,
			expected: &Config{
				SecretKey: "other",
			}},
		{name: "bad number panics", args: []string{"cmd", "-t", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.PanicOnError)

			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}
