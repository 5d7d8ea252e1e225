// Package services contains the ownership-scoped business logic: the
// category/source registry, the expense/income ledger with its referential
// ownership invariant, summaries, and account management behind the access
// policy.
package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tally/internal/core"
)

// CategoryStore is the record-store capability the category registry needs.
type CategoryStore interface {
	InsertCategory(ctx context.Context, c core.Category) error
	ListCategoriesByOwner(ctx context.Context, ownerID string) ([]core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
	UpdateCategoryOwned(ctx context.Context, id, ownerID, name string) (core.Category, error)
	DeleteCategoryOwned(ctx context.Context, id, ownerID string) error
}

type CategoryService struct {
	store CategoryStore
}

func NewCategoryService(store CategoryStore) *CategoryService {
	return &CategoryService{store: store}
}

func (s *CategoryService) Create(ctx context.Context, name, ownerID string) (core.Category, error) {
	c := core.Category{ID: uuid.NewString(), Name: name, OwnerID: ownerID}
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	if err := s.store.InsertCategory(ctx, c); err != nil {
		slog.ErrorContext(ctx, "Failed to create category", "owner_id", ownerID, "error", err)
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Category created", "category_id", c.ID, "owner_id", ownerID)
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, ownerID string) ([]core.Category, error) {
	return s.store.ListCategoriesByOwner(ctx, ownerID)
}

// Update renames the category matching id+owner. A miss on either is
// core.ErrNotFound; whether the record exists under another owner is not
// revealed.
func (s *CategoryService) Update(ctx context.Context, id, ownerID, name string) (core.Category, error) {
	if err := (core.Category{Name: name}).Validate(); err != nil {
		return core.Category{}, err
	}
	c, err := s.store.UpdateCategoryOwned(ctx, id, ownerID, name)
	if err != nil {
		slog.WarnContext(ctx, "Failed to update category", "category_id", id, "owner_id", ownerID, "error", err)
		return core.Category{}, err
	}
	slog.InfoContext(ctx, "Category updated", "category_id", id, "owner_id", ownerID)
	return c, nil
}

// Delete removes the category matching id+owner. Ledger entries referencing
// it are left in place.
func (s *CategoryService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteCategoryOwned(ctx, id, ownerID); err != nil {
		slog.WarnContext(ctx, "Failed to delete category", "category_id", id, "owner_id", ownerID, "error", err)
		return err
	}
	slog.InfoContext(ctx, "Category deleted", "category_id", id, "owner_id", ownerID)
	return nil
}
