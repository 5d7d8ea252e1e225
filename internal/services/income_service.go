package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
	"tally/internal/storage"
)

// IncomeStore is the record-store capability the income ledger needs.
type IncomeStore interface {
	InsertIncomeOwned(ctx context.Context, in core.Income) error
	GetIncomeOwned(ctx context.Context, id, ownerID string) (core.Income, error)
	ListIncomesByOwner(ctx context.Context, ownerID string) ([]core.Income, error)
	UpdateIncomeOwned(ctx context.Context, id, ownerID string, patch storage.LedgerPatch) (core.Income, error)
	DeleteIncomeOwned(ctx context.Context, id, ownerID string) error
	AggregateIncomes(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error)
}

// IncomeService mirrors ExpenseService for the income side: entries
// reference a source and the source must be owned by the same account.
type IncomeService struct {
	store     IncomeStore
	sources   SourceStore
	publisher EventPublisher
}

func NewIncomeService(store IncomeStore, sources SourceStore, publisher EventPublisher) *IncomeService {
	return &IncomeService{store: store, sources: sources, publisher: publisher}
}

func (s *IncomeService) Create(ctx context.Context, in core.Income, ownerID string) (core.Income, error) {
	in.ID = uuid.NewString()
	in.OwnerID = ownerID
	if in.Date.IsZero() {
		in.Date = time.Now()
	}
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	if err := s.resolveSource(ctx, in.SourceID, ownerID); err != nil {
		slog.WarnContext(ctx, "Rejected income reference", "source_id", in.SourceID, "owner_id", ownerID, "error", err)
		return core.Income{}, err
	}

	if err := s.store.InsertIncomeOwned(ctx, in); err != nil {
		slog.ErrorContext(ctx, "Failed to create income", "owner_id", ownerID, "error", err)
		return core.Income{}, err
	}

	slog.InfoContext(ctx, "Income created",
		"income_id", in.ID,
		"owner_id", ownerID,
		"amount_cents", in.Amount.Cents,
		"source_id", in.SourceID)
	s.publish(ctx, "created", in.ID, ownerID)

	return s.store.GetIncomeOwned(ctx, in.ID, ownerID)
}

func (s *IncomeService) List(ctx context.Context, ownerID string) ([]core.Income, error) {
	return s.store.ListIncomesByOwner(ctx, ownerID)
}

func (s *IncomeService) Update(ctx context.Context, id, ownerID string, patch storage.LedgerPatch) (core.Income, error) {
	if err := validatePatch(patch); err != nil {
		return core.Income{}, err
	}
	if _, err := s.store.GetIncomeOwned(ctx, id, ownerID); err != nil {
		return core.Income{}, err
	}
	if patch.ReferenceID != nil {
		if err := s.resolveSource(ctx, *patch.ReferenceID, ownerID); err != nil {
			slog.WarnContext(ctx, "Rejected income reference on update", "source_id", *patch.ReferenceID, "owner_id", ownerID, "error", err)
			return core.Income{}, err
		}
	}

	in, err := s.store.UpdateIncomeOwned(ctx, id, ownerID, patch)
	if err != nil {
		slog.WarnContext(ctx, "Failed to update income", "income_id", id, "owner_id", ownerID, "error", err)
		return core.Income{}, err
	}

	slog.InfoContext(ctx, "Income updated", "income_id", id, "owner_id", ownerID)
	s.publish(ctx, "updated", id, ownerID)
	return in, nil
}

func (s *IncomeService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteIncomeOwned(ctx, id, ownerID); err != nil {
		slog.WarnContext(ctx, "Failed to delete income", "income_id", id, "owner_id", ownerID, "error", err)
		return err
	}
	slog.InfoContext(ctx, "Income deleted", "income_id", id, "owner_id", ownerID)
	s.publish(ctx, "deleted", id, ownerID)
	return nil
}

func (s *IncomeService) GetSummary(ctx context.Context, ownerID string, rng core.DateRange) (core.TypeSummary, error) {
	start, end := rng.Resolve()
	return s.store.AggregateIncomes(ctx, ownerID, start, end)
}

func (s *IncomeService) resolveSource(ctx context.Context, sourceID, ownerID string) error {
	src, err := s.sources.GetSource(ctx, sourceID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrInvalidReference
		}
		return err
	}
	if src.OwnerID != ownerID {
		return core.ErrReferenceNotOwned
	}
	return nil
}

func (s *IncomeService) publish(ctx context.Context, action, entryID, ownerID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, "income", action, entryID, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish income event",
			"action", action, "income_id", entryID, "error", err)
	}
}
