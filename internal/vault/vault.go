// Package vault keeps credentials for multiple accounts in a local
// SQLite database, addressed by a user-chosen account name.
package vault

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"bilicred/internal/credential"
	"bilicred/internal/dbx"
	"bilicred/internal/vault/migrations"
)

// ErrNotFound is returned when no account with the requested name is
// stored.
var ErrNotFound = errors.New("account not found")

// Account is one stored login.
type Account struct {
	ID           string
	Name         string
	Cookies      string
	RefreshToken string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Credential rebuilds the persisted credential for this account.
func (a *Account) Credential() *credential.Credential {
	return &credential.Credential{Cookies: a.Cookies, RefreshToken: a.RefreshToken}
}

// Vault is a handle to an opened account database.
type Vault struct {
	db *sql.DB
}

// Open opens (creating if necessary) the vault database at dsn and
// applies pending schema migrations.
func Open(ctx context.Context, dsn string) (*Vault, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Vault{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

// Close releases the underlying database.
func (v *Vault) Close() error {
	return v.db.Close()
}

// Put stores cred under name, creating the account on first use and
// overwriting its credential afterwards. The account id stays stable
// across updates.
func (v *Vault) Put(ctx context.Context, name string, cred *credential.Credential) (*Account, error) {
	var acc *Account
	err := dbx.WithTx(ctx, v.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)

		existing, err := repo.GetByName(ctx, name)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}

		now := time.Now()
		acc = &Account{
			ID:           uuid.NewString(),
			Name:         name,
			Cookies:      cred.Cookies,
			RefreshToken: cred.RefreshToken,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if existing != nil {
			acc.ID = existing.ID
			acc.CreatedAt = existing.CreatedAt
		}
		return repo.Upsert(ctx, acc)
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Get returns the account stored under name.
func (v *Vault) Get(ctx context.Context, name string) (*Account, error) {
	return NewSQLiteRepository(v.db).GetByName(ctx, name)
}

// List returns all stored accounts ordered by name. Credentials are
// included; callers listing for display should not print them.
func (v *Vault) List(ctx context.Context) ([]Account, error) {
	return NewSQLiteRepository(v.db).List(ctx)
}

// Delete removes the account stored under name.
func (v *Vault) Delete(ctx context.Context, name string) error {
	return NewSQLiteRepository(v.db).DeleteByName(ctx, name)
}
