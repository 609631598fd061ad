package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the bilicred CLI.
type Config struct {
	// CredentialFile is where the active credential is stored.
	CredentialFile string
	// VaultPath is the SQLite database holding named accounts.
	VaultPath string
	// PollInterval is how often the QR login status is polled.
	PollInterval time.Duration
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// LoadDefaults populates c with sensible defaults under the user's
// data directory.
func (c *Config) LoadDefaults() {
	dir := dataDir()
	c.CredentialFile = filepath.Join(dir, "cred.json")
	c.VaultPath = filepath.Join(dir, "vault.db")
	c.PollInterval = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// dataDir is ~/.bilicred, falling back to the working directory when no
// home is resolvable.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bilicred"
	}
	return filepath.Join(home, ".bilicred")
}
