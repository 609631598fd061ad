package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bilicred/internal/dbx"
)

// SQLiteRepository implements account storage over a DBTX, so the same
// code serves both direct and transactional access.
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a repository bound to db.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts the account or, when the name is already taken,
// replaces its credential. The stored id and created_at survive
// updates.
func (r *SQLiteRepository) Upsert(ctx context.Context, a *Account) error {
	query := `INSERT INTO accounts (id, name, cookies, refresh_token, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET cookies = excluded.cookies,
				refresh_token = excluded.refresh_token,
				updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Name, a.Cookies, a.RefreshToken, a.CreatedAt.Unix(), a.UpdatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert account: %w", err)
	}
	return nil
}

// GetByName returns the account stored under name, or ErrNotFound.
func (r *SQLiteRepository) GetByName(ctx context.Context, name string) (*Account, error) {
	query := `SELECT id, name, cookies, refresh_token, created_at, updated_at
			FROM accounts WHERE name = ?`
	row := r.db.QueryRowContext(ctx, query, name)

	a, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %q: %w", name, err)
	}
	return a, nil
}

// List returns every account ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Account, error) {
	query := `SELECT id, name, cookies, refresh_token, created_at, updated_at
			FROM accounts ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var result []Account
	for rows.Next() {
		a, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		result = append(result, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return result, nil
}

// DeleteByName removes the account stored under name. Deleting a name
// that is not stored returns ErrNotFound.
func (r *SQLiteRepository) DeleteByName(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete account %q: %w", name, err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAccount(scan func(dest ...any) error) (*Account, error) {
	var a Account
	var created, updated int64
	if err := scan(&a.ID, &a.Name, &a.Cookies, &a.RefreshToken, &created, &updated); err != nil {
		return nil, err
	}
	a.CreatedAt = time.Unix(created, 0)
	a.UpdatedAt = time.Unix(updated, 0)
	return &a, nil
}
