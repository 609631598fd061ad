package config

import (
	"encoding/json"
	"os"
	"time"

	"bilicred/internal/flagx"
	"bilicred/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so intervals can be either strings like "10s" or
// integer nanoseconds. After parsing, set values are copied into the
// runtime Config.
type JsonConfig struct {
	CredentialFile string         `json:"credential_file"`
	VaultPath      string         `json:"vault_path"`
	PollInterval   timex.Duration `json:"poll_interval"`
	LogLevel       string         `json:"log_level"`
}

// parseJson overlays cfg with values from the JSON file named by the -c
// or -config flag. Without the flag nothing is loaded. Fields absent
// from the file keep their current values. Read and unmarshal errors
// panic; config this broken should stop the program at startup.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.CredentialFile != "" {
		cfg.CredentialFile = jc.CredentialFile
	}
	if jc.VaultPath != "" {
		cfg.VaultPath = jc.VaultPath
	}
	if jc.PollInterval.Duration != 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
