// Package config loads runtime configuration for the bilicred CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-f string   path to the credential file
//	-d string   path to the account vault database
//	-i int      QR login poll interval (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "10s" or integer nanoseconds:
//
//	{
//	  "credential_file": "/home/me/.bilicred/cred.json",
//	  "vault_path": "/home/me/.bilicred/vault.db",
//	  "poll_interval": "10s",
//	  "log_level": "debug"
//	}
//
// Fields missing from the JSON file keep their earlier values.
package config
