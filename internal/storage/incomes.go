package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tally/internal/core"
)

// InsertIncomeOwned persists an income only if its source exists and belongs
// to ownerID, with the ownership predicate inside the INSERT. Zero rows
// written reports core.ErrReferenceNotOwned.
func (r *SQLiteRepository) InsertIncomeOwned(ctx context.Context, in core.Income) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO incomes (id, amount_cents, description, date, source_id, owner_id)
		 SELECT ?, ?, ?, ?, s.id, ?
		 FROM sources s WHERE s.id = ? AND s.owner_id = ?`,
		in.ID, in.Amount.Cents, in.Description, in.Date.UnixNano(), in.OwnerID,
		in.SourceID, in.OwnerID)
	if err != nil {
		return fmt.Errorf("insert income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrReferenceNotOwned
	}
	return nil
}

func (r *SQLiteRepository) GetIncomeOwned(ctx context.Context, id, ownerID string) (core.Income, error) {
	row := r.db.QueryRowContext(ctx, incomeJoinQuery+` WHERE i.id = ? AND i.owner_id = ?`, id, ownerID)
	return scanIncome(row)
}

func (r *SQLiteRepository) ListIncomesByOwner(ctx context.Context, ownerID string) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx,
		incomeJoinQuery+` WHERE i.owner_id = ? ORDER BY i.date DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var incomes []core.Income
	for rows.Next() {
		in, err := scanIncome(rows)
		if err != nil {
			return nil, err
		}
		incomes = append(incomes, in)
	}
	return incomes, rows.Err()
}

func (r *SQLiteRepository) UpdateIncomeOwned(ctx context.Context, id, ownerID string, patch LedgerPatch) (core.Income, error) {
	var date *int64
	if patch.Date != nil {
		n := patch.Date.UnixNano()
		date = &n
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE incomes SET
		   amount_cents = COALESCE(?, amount_cents),
		   description  = COALESCE(?, description),
		   date         = COALESCE(?, date),
		   source_id    = COALESCE(?, source_id)
		 WHERE id = ? AND owner_id = ?
		   AND (?4 IS NULL OR EXISTS (
		         SELECT 1 FROM sources s WHERE s.id = ?4 AND s.owner_id = ?6))`,
		patch.AmountCents, patch.Description, date, patch.ReferenceID,
		id, ownerID)
	if err != nil {
		return core.Income{}, fmt.Errorf("update income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Income{}, core.ErrNotFound
	}
	return r.GetIncomeOwned(ctx, id, ownerID)
}

func (r *SQLiteRepository) DeleteIncomeOwned(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM incomes WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) AggregateIncomes(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error) {
	var s core.TypeSummary
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		 FROM incomes WHERE owner_id = ? AND date >= ? AND date <= ?`,
		ownerID, start.UnixNano(), end.UnixNano()).
		Scan(&s.TotalAmount.Cents, &s.Count)
	if err != nil {
		return core.TypeSummary{}, fmt.Errorf("aggregate incomes: %w", err)
	}
	return s, nil
}

const incomeJoinQuery = `
	SELECT i.id, i.amount_cents, i.description, i.date, i.source_id,
	       s.id, s.name
	FROM incomes i LEFT JOIN sources s ON s.id = i.source_id`

func scanIncome(row rowScanner) (core.Income, error) {
	var (
		in      core.Income
		date    int64
		srcID   sql.NullString
		srcName sql.NullString
	)
	err := row.Scan(&in.ID, &in.Amount.Cents, &in.Description, &date, &in.SourceID, &srcID, &srcName)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Income{}, core.ErrNotFound
	}
	if err != nil {
		return core.Income{}, fmt.Errorf("scan income: %w", err)
	}
	in.Date = time.Unix(0, date)
	if srcID.Valid {
		in.Source = &core.Source{ID: srcID.String, Name: srcName.String}
	}
	return in, nil
}
