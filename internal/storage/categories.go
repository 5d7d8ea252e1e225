package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tally/internal/core"
)

func (r *SQLiteRepository) InsertCategory(ctx context.Context, c core.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, owner_id) VALUES (?, ?, ?)`,
		c.ID, c.Name, c.OwnerID)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategoriesByOwner(ctx context.Context, ownerID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, owner_id FROM categories WHERE owner_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// GetCategory looks a category up by id alone. The ledger services use it to
// resolve references before the ownership comparison.
func (r *SQLiteRepository) GetCategory(ctx context.Context, id string) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, owner_id FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategoryOwned(ctx context.Context, id, ownerID, name string) (core.Category, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories SET name = ? WHERE id = ? AND owner_id = ?`,
		name, id, ownerID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Category{}, core.ErrNotFound
	}
	return core.Category{ID: id, Name: name, OwnerID: ownerID}, nil
}

func (r *SQLiteRepository) DeleteCategoryOwned(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
