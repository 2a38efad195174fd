// Package config loads runtime configuration for the fintrack terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string         base URL of the REST API
//	-h string         address:port of the gRPC health endpoint
//	-i int            online status check interval (seconds)
//	-timeout int      mutation timeout before queueing (milliseconds)
//	-db string        path of the local SQLite database
//	-max-attempts int rejections before a queued mutation is abandoned (0 = never)
//	-log-level string debug, info, warn or error
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "health_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "request_timeout": "3s",
//	  "db_path": "fintrack.db",
//	  "max_attempts": 5
//	}
package config
