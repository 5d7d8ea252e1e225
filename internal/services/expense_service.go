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

// EventPublisher pushes ledger lifecycle events to the message bus. Publish
// failures are logged and swallowed: eventing must never change the outcome
// of the operation that triggered it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, entryType, action, entryID, ownerID string) error
}

// ExpenseStore is the record-store capability the expense ledger needs. The
// Owned writes match id+owner (and, for reference changes, category
// ownership) in a single conditional statement.
type ExpenseStore interface {
	InsertExpenseOwned(ctx context.Context, e core.Expense) error
	GetExpenseOwned(ctx context.Context, id, ownerID string) (core.Expense, error)
	ListExpensesByOwner(ctx context.Context, ownerID string) ([]core.Expense, error)
	UpdateExpenseOwned(ctx context.Context, id, ownerID string, patch storage.LedgerPatch) (core.Expense, error)
	DeleteExpenseOwned(ctx context.Context, id, ownerID string) error
	AggregateExpenses(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error)
}

// ExpenseService owns the expense side of the ledger. Every write re-checks
// the referential ownership invariant: an expense may only reference a
// category owned by the same account.
type ExpenseService struct {
	store      ExpenseStore
	categories CategoryStore
	publisher  EventPublisher
}

func NewExpenseService(store ExpenseStore, categories CategoryStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{store: store, categories: categories, publisher: publisher}
}

// Create validates the referenced category and persists the expense. The
// resolve step distinguishes "invalid reference id" from "reference not
// owned by caller"; the insert itself re-encodes the ownership predicate so
// a concurrent category mutation cannot bypass the check.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense, ownerID string) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.OwnerID = ownerID
	if e.Date.IsZero() {
		e.Date = time.Now()
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	if err := s.resolveCategory(ctx, e.CategoryID, ownerID); err != nil {
		slog.WarnContext(ctx, "Rejected expense reference", "category_id", e.CategoryID, "owner_id", ownerID, "error", err)
		return core.Expense{}, err
	}

	if err := s.store.InsertExpenseOwned(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to create expense", "owner_id", ownerID, "error", err)
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", e.ID,
		"owner_id", ownerID,
		"amount_cents", e.Amount.Cents,
		"category_id", e.CategoryID)
	s.publish(ctx, "created", e.ID, ownerID)

	return s.store.GetExpenseOwned(ctx, e.ID, ownerID)
}

// List returns the owner's expenses, each annotated with its resolved
// category, owner field stripped.
func (s *ExpenseService) List(ctx context.Context, ownerID string) ([]core.Expense, error) {
	return s.store.ListExpensesByOwner(ctx, ownerID)
}

// Update patches the expense matching id+owner. A patch that moves the entry
// to another category re-runs the full reference validation against the new
// category before anything is written.
func (s *ExpenseService) Update(ctx context.Context, id, ownerID string, patch storage.LedgerPatch) (core.Expense, error) {
	if err := validatePatch(patch); err != nil {
		return core.Expense{}, err
	}
	if _, err := s.store.GetExpenseOwned(ctx, id, ownerID); err != nil {
		return core.Expense{}, err
	}
	if patch.ReferenceID != nil {
		if err := s.resolveCategory(ctx, *patch.ReferenceID, ownerID); err != nil {
			slog.WarnContext(ctx, "Rejected expense reference on update", "category_id", *patch.ReferenceID, "owner_id", ownerID, "error", err)
			return core.Expense{}, err
		}
	}

	e, err := s.store.UpdateExpenseOwned(ctx, id, ownerID, patch)
	if err != nil {
		slog.WarnContext(ctx, "Failed to update expense", "expense_id", id, "owner_id", ownerID, "error", err)
		return core.Expense{}, err
	}

	slog.InfoContext(ctx, "Expense updated", "expense_id", id, "owner_id", ownerID)
	s.publish(ctx, "updated", id, ownerID)
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.store.DeleteExpenseOwned(ctx, id, ownerID); err != nil {
		slog.WarnContext(ctx, "Failed to delete expense", "expense_id", id, "owner_id", ownerID, "error", err)
		return err
	}
	slog.InfoContext(ctx, "Expense deleted", "expense_id", id, "owner_id", ownerID)
	s.publish(ctx, "deleted", id, ownerID)
	return nil
}

// GetSummary aggregates the owner's expenses over the resolved window.
func (s *ExpenseService) GetSummary(ctx context.Context, ownerID string, rng core.DateRange) (core.TypeSummary, error) {
	start, end := rng.Resolve()
	return s.store.AggregateExpenses(ctx, ownerID, start, end)
}

func (s *ExpenseService) resolveCategory(ctx context.Context, categoryID, ownerID string) error {
	c, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.ErrInvalidReference
		}
		return err
	}
	if c.OwnerID != ownerID {
		return core.ErrReferenceNotOwned
	}
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, action, entryID, ownerID string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, "expense", action, entryID, ownerID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", action, "expense_id", entryID, "error", err)
	}
}
