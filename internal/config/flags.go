package config

import (
	"flag"
	"os"
	"time"

	"bilicred/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-f string   credential file path (default from Config)
//	-d string   vault database path (default from Config)
//	-i int      QR poll interval in seconds (default from Config)
//	-l string   log level (default from Config)
//
// Only the flags listed here are consumed; the rest of os.Args is left
// for the command dispatcher, using flagx.FilterArgs.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-f", "-d", "-i", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.CredentialFile, "f", cfg.CredentialFile, "credential file path")
	fs.StringVar(&cfg.VaultPath, "d", cfg.VaultPath, "vault database path")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "QR poll interval (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
