package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"bilicred/internal/buildinfo"
	"bilicred/internal/cli"
	"bilicred/internal/config"
	"bilicred/internal/flagx"
	"bilicred/internal/logging"
)

// configFlags are consumed by the config loader; everything else on the
// command line belongs to the command dispatcher.
var configFlags = []string{"-f", "-d", "-i", "-l", "-c", "-config"}

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	log := logging.NewSlogLogger(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(cfg, log)
	if err := app.Run(ctx, flagx.ExcludeArgs(os.Args[1:], configFlags)); err != nil {
		log.Error(ctx, "command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
