package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"tally/internal/core"
)

// SourceStore is the record-store capability the source registry needs.
type SourceStore interface {
	InsertSource(ctx context.Context, s core.Source) error
	ListSourcesByOwner(ctx context.Context, ownerID string) ([]core.Source, error)
	GetSource(ctx context.Context, id string) (core.Source, error)
	UpdateSourceOwned(ctx context.Context, id, ownerID, name string) (core.Source, error)
	DeleteSourceOwned(ctx context.Context, id, ownerID string) error
}

type SourceService struct {
	store SourceStore
}

func NewSourceService(store SourceStore) *SourceService {
	return &SourceService{store: store}
}

func (s *SourceService) Create(ctx context.Context, name, ownerID string) (core.Source, error) {
	src := core.Source{ID: uuid.NewString(), Name: name, OwnerID: ownerID}
	if err := src.Validate(); err != nil {
		return core.Source{}, err
	}
	if err := s.store.InsertSource(ctx, src); err != nil {
		slog.ErrorContext(ctx, "Failed to create source", "owner_id", ownerID, "error", err)
		return core.Source{}, err
	}
	slog.InfoContext(ctx, "Source created", "source_id", src.ID, "owner_id", ownerID)
	return src, nil
}

func (s *SourceService) List(ctx context.Context, ownerID string) ([]core.Source, error) {
	return s.store.ListSourcesByOwner(ctx, ownerID)
}

func (s *SourceService) Update(ctx context.Context, id, ownerID, name string) (core.Source, error) {
	if err := (core.Source{Name: name}).Validate(); err != nil {
		return core.Source{}, err
	}
	src, err := s.store.UpdateSourceOwned(ctx, id, ownerID, name)
	if err != nil {
		slog.WarnContext(ctx, "Failed to update source", "source_id", id, "owner_id", ownerID, "error", err)
		return core.Source{}, err
	}
	slog.InfoContext(ctx, "Source updated", "source_id", id, "owner_id", ownerID)
	return src, nil
}

func (s *SourceService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteSourceOwned(ctx, id, ownerID); err != nil {
		slog.WarnContext(ctx, "Failed to delete source", "source_id", id, "owner_id", ownerID, "error", err)
		return err
	}
	slog.InfoContext(ctx, "Source deleted", "source_id", id, "owner_id", ownerID)
	return nil
}
