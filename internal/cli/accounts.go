package cli

import (
	"context"
	"fmt"

	"bilicred/internal/vault"
)

// Accounts manages the vault: list by default, delete by name.
func (a *App) Accounts(ctx context.Context, args []string) error {
	v, err := vault.Open(ctx, a.config.VaultPath)
	if err != nil {
		return err
	}
	defer v.Close()

	if len(args) == 0 || args[0] == "list" {
		return a.listAccounts(ctx, v)
	}

	switch args[0] {
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: accounts delete <name>")
		}
		if err := v.Delete(ctx, args[1]); err != nil {
			return err
		}
		successColor.Fprintf(a.out, "Account %q deleted.\n", args[1])
		return nil
	default:
		return fmt.Errorf("unknown accounts subcommand %q", args[0])
	}
}

func (a *App) listAccounts(ctx context.Context, v *vault.Vault) error {
	accounts, err := v.List(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Fprintln(a.out, "No accounts stored. Run login first.")
		return nil
	}

	for _, acc := range accounts {
		labelColor.Fprintf(a.out, "%s", acc.Name)
		fmt.Fprintf(a.out, "  updated %s\n", acc.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
