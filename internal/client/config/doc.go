// Package config loads runtime configuration for the clinicdesk CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Environment variables, prefixed CLINICDESK_.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the clinicdesk HTTP API
//	-i int      online status check interval (seconds)
//	-t int      per-request timeout (seconds)
//	-S string   directory holding the saved session
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:5000",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "session_dir": ".clinicdesk"
//	}
package config
