package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/core"
)

func (r *SQLiteRepository) InsertSource(ctx context.Context, s core.Source) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sources (id, name, owner_id) VALUES (?, ?, ?)`,
		s.ID, s.Name, s.OwnerID)
	if err != nil {
		return fmt.Errorf("insert source: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListSourcesByOwner(ctx context.Context, ownerID string) ([]core.Source, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner_id FROM sources WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var srcs []core.Source
	for rows.Next() {
		var s core.Source
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerID); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		srcs = append(srcs, s)
	}
	return srcs, rows.Err()
}

func (r *SQLiteRepository) GetSource(ctx context.Context, id string) (core.Source, error) {
	var s core.Source
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id FROM sources WHERE id = ?`, id).
		Scan(&s.ID, &s.Name, &s.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Source{}, core.ErrNotFound
	}
	if err != nil {
		return core.Source{}, fmt.Errorf("get source: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) UpdateSourceOwned(ctx context.Context, id, ownerID, name string) (core.Source, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sources SET name = ? WHERE id = ? AND owner_id = ?`,
		name, id, ownerID)
	if err != nil {
		return core.Source{}, fmt.Errorf("update source: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Source{}, core.ErrNotFound
	}
	return core.Source{ID: id, Name: name, OwnerID: ownerID}, nil
}

func (r *SQLiteRepository) DeleteSourceOwned(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM sources WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
