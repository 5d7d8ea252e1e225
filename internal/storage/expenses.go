package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tally/internal/core"
)

// LedgerPatch carries the mutable fields of a ledger entry; nil means
// unchanged. ReferenceID is the category for expenses, the source for
// incomes.
type LedgerPatch struct {
	AmountCents *int64
	Description *string
	Date        *time.Time
	ReferenceID *string
}

// InsertExpenseOwned persists an expense only if its category exists and
// belongs to ownerID. The ownership predicate sits inside the INSERT itself,
// so a concurrent category mutation cannot slip a foreign reference in
// between a check and the write. Zero rows written reports
// core.ErrReferenceNotOwned.
func (r *SQLiteRepository) InsertExpenseOwned(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, amount_cents, description, date, category_id, owner_id)
		 SELECT ?, ?, ?, ?, c.id, ?
		 FROM categories c WHERE c.id = ? AND c.owner_id = ?`,
		e.ID, e.Amount.Cents, e.Description, e.Date.UnixNano(), e.OwnerID,
		e.CategoryID, e.OwnerID)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrReferenceNotOwned
	}
	return nil
}

func (r *SQLiteRepository) GetExpenseOwned(ctx context.Context, id, ownerID string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, expenseJoinQuery+` WHERE e.id = ? AND e.owner_id = ?`, id, ownerID)
	e, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, err
	}
	return e, nil
}

func (r *SQLiteRepository) ListExpensesByOwner(ctx context.Context, ownerID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		expenseJoinQuery+` WHERE e.owner_id = ? ORDER BY e.date DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// UpdateExpenseOwned applies the patch to the entry matching id+owner. When
// the patch moves the entry to a new category, the UPDATE only matches if
// that category is owned by ownerID, mirroring the insert-side predicate.
func (r *SQLiteRepository) UpdateExpenseOwned(ctx context.Context, id, ownerID string, patch LedgerPatch) (core.Expense, error) {
	var date *int64
	if patch.Date != nil {
		n := patch.Date.UnixNano()
		date = &n
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET
		   amount_cents = COALESCE(?, amount_cents),
		   description  = COALESCE(?, description),
		   date         = COALESCE(?, date),
		   category_id  = COALESCE(?, category_id)
		 WHERE id = ? AND owner_id = ?
		   AND (?4 IS NULL OR EXISTS (
		         SELECT 1 FROM categories c WHERE c.id = ?4 AND c.owner_id = ?6))`,
		patch.AmountCents, patch.Description, date, patch.ReferenceID,
		id, ownerID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Expense{}, core.ErrNotFound
	}
	return r.GetExpenseOwned(ctx, id, ownerID)
}

func (r *SQLiteRepository) DeleteExpenseOwned(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// AggregateExpenses sums amount and counts entries for the owner inside the
// inclusive [start, end] window. No matches yields {0, 0}.
func (r *SQLiteRepository) AggregateExpenses(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error) {
	var s core.TypeSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		 FROM expenses WHERE owner_id = ? AND date >= ? AND date <= ?`,
		ownerID, start.UnixNano(), end.UnixNano()).
		Scan(&s.TotalAmount.Cents, &s.Count)
	if err != nil {
		return core.TypeSummary{}, fmt.Errorf("aggregate expenses: %w", err)
	}
	return s, nil
}

const expenseJoinQuery = `
	SELECT e.id, e.amount_cents, e.description, e.date, e.category_id,
	       c.id, c.name
	FROM expenses e LEFT JOIN categories c ON c.id = e.category_id`

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e       core.Expense
		date    int64
		catID   sql.NullString
		catName sql.NullString
	)
	err := row.Scan(&e.ID, &e.Amount.Cents, &e.Description, &date, &e.CategoryID, &catID, &catName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Date = time.Unix(0, date)
	if catID.Valid {
		// Joined reference, owner deliberately not selected.
		e.Category = &core.Category{ID: catID.String, Name: catName.String}
	}
	return e, nil
}
