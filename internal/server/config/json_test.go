package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "server.json", map[string]any{
		"endpoint_addr_grpc":             "0.0.0.0:6000",
		"secret_key":                     "json-secret",
		"access_token_validity_duration": "2m",
		"rates_cache_ttl":                "30m",
		"s3_bucket":                      "bills",
		"max_upload_bytes":               2048,
		"rate_limit_rps":                 5.5,
		"recurring_schedule":             "@daily",
	})

	t.Run("overlays present keys", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "0.0.0.0:6000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "json-secret", cfg.SecretKey)
		assert.Equal(t, 2*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 30*time.Minute, cfg.RatesCacheTTL)
		assert.Equal(t, "bills", cfg.S3Bucket)
		assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
		assert.Equal(t, 5.5, cfg.RateLimitRPS)
		assert.Equal(t, "@daily", cfg.RecurringSchedule)

		assert.Equal(t, ":8080", cfg.EndpointAddrHTTP, "absent key keeps default")
		assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenValidityDuration)
	})

	t.Run("no config flag leaves config untouched", func(t *testing.T) {
		os.Args = []string{"testbin"}
		cfg := &Config{DatabaseDSN: "keep"}
		parseJson(cfg)
		assert.Equal(t, Config{DatabaseDSN: "keep"}, *cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "absent.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
