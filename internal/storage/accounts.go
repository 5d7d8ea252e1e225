package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tally/internal/core"
)

// AccountPatch carries the mutable account fields; nil means unchanged.
type AccountPatch struct {
	Username     *string
	Email        *string
	PasswordHash *string
	Role         *core.Role
}

func (r *SQLiteRepository) InsertAccount(ctx context.Context, a core.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (id, username, email, password_hash, role, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Username, a.Email, a.PasswordHash, string(a.Role), a.CreatedAt.UnixNano())
	if isUniqueViolation(err) {
		return core.ErrAccountExists
	}
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, id string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, created_at
		 FROM accounts WHERE id = ?`, id)
	return scanAccount(row)
}

func (r *SQLiteRepository) GetAccountByUsername(ctx context.Context, username string) (core.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role, created_at
		 FROM accounts WHERE username = ?`, username)
	return scanAccount(row)
}

// AccountExists reports whether any account already uses the username or the
// email.
func (r *SQLiteRepository) AccountExists(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE username = ? OR email = ?`,
		username, email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check account exists: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, username, email, password_hash, role, created_at
		 FROM accounts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, id string, patch AccountPatch) (core.Account, error) {
	var role *string
	if patch.Role != nil {
		s := string(*patch.Role)
		role = &s
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET
		   username      = COALESCE(?, username),
		   email         = COALESCE(?, email),
		   password_hash = COALESCE(?, password_hash),
		   role          = COALESCE(?, role)
		 WHERE id = ?`,
		patch.Username, patch.Email, patch.PasswordHash, role, id)
	if isUniqueViolation(err) {
		return core.Account{}, core.ErrAccountExists
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Account{}, core.ErrNotFound
	}
	return r.GetAccount(ctx, id)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a         core.Account
		role      string
		createdAt int64
	)
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &role, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, core.ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("scan account: %w", err)
	}
	a.Role = core.Role(role)
	a.CreatedAt = time.Unix(0, createdAt)
	return a, nil
}
