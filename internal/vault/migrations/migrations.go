// Package migrations embeds the vault schema migrations applied by
// goose on open.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
