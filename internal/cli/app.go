// Package cli implements the bilicred command line interface: QR login,
// credential refresh, profile queries and the account vault.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"bilicred/internal/config"
	"bilicred/internal/logging"
	"bilicred/internal/session"
)

var (
	successColor = color.New(color.FgGreen)
	labelColor   = color.New(color.FgHiCyan)
	warnColor    = color.New(color.FgYellow)
)

// App wires the commands to their dependencies.
type App struct {
	config *config.Config
	log    logging.Logger
	out    io.Writer
	reader *bufio.Reader

	// sessionConfig stays zero in production, meaning live endpoints.
	// Tests point it at a local server.
	sessionConfig session.Config
}

func NewApp(cfg *config.Config, log logging.Logger) *App {
	if log == nil {
		log = logging.NewNop()
	}
	return &App{
		config:        cfg,
		log:           log,
		out:           os.Stdout,
		reader:        bufio.NewReader(os.Stdin),
		sessionConfig: session.Config{Logger: log},
	}
}

func (a *App) newSession() (*session.Session, error) {
	return session.New(a.sessionConfig)
}

// Run dispatches a single command. args is the command line with the
// config flags already stripped.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return nil
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.Login(ctx, rest)
	case "refresh":
		return a.Refresh(ctx, rest)
	case "whoami":
		return a.Whoami(ctx)
	case "vip":
		return a.Vip(ctx)
	case "accounts":
		return a.Accounts(ctx, rest)
	case "help":
		a.usage()
		return nil
	default:
		fmt.Fprintln(a.out, "Unknown command:", cmd)
		a.usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, `Usage: bilicred [flags] <command>

Commands:
  login [name]            log in by QR code, store the credential (vault name defaults to "main")
  refresh [name]          rotate the credential when the server asks for it
  whoami                  show the profile behind the stored credential
  vip                     show subscription status
  accounts                list vault accounts
  accounts delete <name>  remove a vault account
  help                    show this message

Flags:
  -f path    credential file (default ~/.bilicred/cred.json)
  -d path    account vault database (default ~/.bilicred/vault.db)
  -i sec     QR poll interval
  -l level   log level: debug, info, warn, error
  -c path    JSON config file`)
}
