package config

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubEnv(t *testing.T, env map[string]string) {
	t.Helper()
	origLoad, origLookup := loadDotEnv, lookupEnv
	t.Cleanup(func() { loadDotEnv, lookupEnv = origLoad, origLookup })

	loadDotEnv = func() error { return fs.ErrNotExist }
	lookupEnv = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestParseEnv_Overrides(t *testing.T) {
	stubEnv(t, map[string]string{
		"DATABASE_DSN":        "postgres://env",
		"FINTRACK_SECRET_KEY": "env-secret",
		"OPENROUTER_API_KEY":  "sk-123",
		"OPENROUTER_BASE_URL": "http://llm.local/v1",
	})

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, "postgres://env", c.DatabaseDSN)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, "sk-123", c.VisionAPIKey)
	assert.Equal(t, "http://llm.local/v1", c.VisionBaseURL)
}

func TestParseEnv_EmptyValuesIgnored(t *testing.T) {
	stubEnv(t, map[string]string{"FINTRACK_SECRET_KEY": ""})

	c := Config{SecretKey: "keep"}
	parseEnv(&c)
	assert.Equal(t, "keep", c.SecretKey)
}

func TestParseEnv_BrokenDotEnvPanics(t *testing.T) {
	stubEnv(t, nil)
	loadDotEnv = func() error { return errors.New("unexpected character") }

	assert.Panics(t, func() { parseEnv(&Config{}) })
}
