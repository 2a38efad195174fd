package config

import (
	"github.com/dmitrijs2005/fintrack/internal/flagx"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerURL           string         `json:"server_url"`
	HealthAddr          string         `json:"health_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	DBPath              string         `json:"db_path"`
	MaxAttempts         *int           `json:"max_attempts"`
	LogLevel            string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the file named by
// -c/-config. Absent keys keep the current value; max_attempts is a pointer so
// an explicit 0 (retry forever) can be told apart from "not set". Panics on
// read or unmarshal errors.
func parseJson(cfg *Config) {
	var jc JsonConfig
	if err := flagx.LoadJSON(flagx.JsonConfigFlags(), &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.HealthAddr != "" {
		cfg.HealthAddr = jc.HealthAddr
	}
	if jc.OnlineCheckInterval.Duration > 0 {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.MaxAttempts != nil {
		cfg.MaxAttempts = *jc.MaxAttempts
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
