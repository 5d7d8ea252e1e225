package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"tally/internal/core"
	"tally/internal/storage"
)

// fakeExpenseStore keeps expenses in a map keyed by id, scoping reads and
// writes by owner the way the real store does.
type fakeExpenseStore struct {
	expenses  map[string]core.Expense
	insertErr error
}

func newFakeExpenseStore() *fakeExpenseStore {
	return &fakeExpenseStore{expenses: make(map[string]core.Expense)}
}

func (f *fakeExpenseStore) InsertExpenseOwned(ctx context.Context, e core.Expense) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.expenses[e.ID] = e
	return nil
}

func (f *fakeExpenseStore) GetExpenseOwned(ctx context.Context, id, ownerID string) (core.Expense, error) {
	e, ok := f.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.Expense{}, core.ErrNotFound
	}
	return e, nil
}

func (f *fakeExpenseStore) ListExpensesByOwner(ctx context.Context, ownerID string) ([]core.Expense, error) {
	var out []core.Expense
	for _, e := range f.expenses {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeExpenseStore) UpdateExpenseOwned(ctx context.Context, id, ownerID string, patch storage.LedgerPatch) (core.Expense, error) {
	e, ok := f.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.Expense{}, core.ErrNotFound
	}
	if patch.AmountCents != nil {
		e.Amount = core.Money{Cents: *patch.AmountCents}
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.ReferenceID != nil {
		e.CategoryID = *patch.ReferenceID
	}
	f.expenses[id] = e
	return e, nil
}

func (f *fakeExpenseStore) DeleteExpenseOwned(ctx context.Context, id, ownerID string) error {
	if e, ok := f.expenses[id]; !ok || e.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(f.expenses, id)
	return nil
}

func (f *fakeExpenseStore) AggregateExpenses(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error) {
	var s core.TypeSummary
	for _, e := range f.expenses {
		if e.OwnerID != ownerID {
			continue
		}
		if e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		s.TotalAmount.Cents += e.Amount.Cents
		s.Count++
	}
	return s, nil
}

// fakeCategoryStore serves only the methods the expense service touches.
type fakeCategoryStore struct {
	categories map[string]core.Category
}

func newFakeCategoryStore(cats ...core.Category) *fakeCategoryStore {
	f := &fakeCategoryStore{categories: make(map[string]core.Category)}
	for _, c := range cats {
		f.categories[c.ID] = c
	}
	return f
}

func (f *fakeCategoryStore) InsertCategory(ctx context.Context, c core.Category) error {
	f.categories[c.ID] = c
	return nil
}

func (f *fakeCategoryStore) ListCategoriesByOwner(ctx context.Context, ownerID string) ([]core.Category, error) {
	var out []core.Category
	for _, c := range f.categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) GetCategory(ctx context.Context, id string) (core.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (f *fakeCategoryStore) UpdateCategoryOwned(ctx context.Context, id, ownerID, name string) (core.Category, error) {
	c, ok := f.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.Category{}, core.ErrNotFound
	}
	c.Name = name
	f.categories[id] = c
	return c, nil
}

func (f *fakeCategoryStore) DeleteCategoryOwned(ctx context.Context, id, ownerID string) error {
	c, ok := f.categories[id]
	if !ok || c.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

// fakePublisher records every event and can be told to fail.
type fakePublisher struct {
	events []string
	err    error
}

func (f *fakePublisher) PublishLedgerEvent(ctx context.Context, entryType, action, entryID, ownerID string) error {
	f.events = append(f.events, entryType+":"+action)
	return f.err
}

func newExpenseFixture() (*ExpenseService, *fakeExpenseStore, *fakePublisher) {
	store := newFakeExpenseStore()
	cats := newFakeCategoryStore(
		core.Category{ID: "c1", Name: "food", OwnerID: "a1"},
		core.Category{ID: "foreign", Name: "other", OwnerID: "a2"},
	)
	pub := &fakePublisher{}
	return NewExpenseService(store, cats, pub), store, pub
}

func TestExpenseService_Create(t *testing.T) {
	svc, store, pub := newExpenseFixture()

	got, err := svc.Create(context.Background(), core.Expense{
		Amount:      core.Money{Cents: 1500},
		Description: "groceries",
		CategoryID:  "c1",
	}, "a1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.ID == "" {
		t.Error("created expense should have an id")
	}
	if got.OwnerID != "a1" {
		t.Errorf("owner = %q, want a1", got.OwnerID)
	}
	if got.Date.IsZero() {
		t.Error("missing date should default to now")
	}
	if len(store.expenses) != 1 {
		t.Errorf("store holds %d entries, want 1", len(store.expenses))
	}
	if len(pub.events) != 1 || pub.events[0] != "expense:created" {
		t.Errorf("events = %v, want [expense:created]", pub.events)
	}
}

func TestExpenseService_CreateRejectsBadInput(t *testing.T) {
	svc, store, pub := newExpenseFixture()

	tests := []struct {
		name    string
		expense core.Expense
		wantErr error
	}{
		{
			name:    "negative amount",
			expense: core.Expense{Amount: core.Money{Cents: -1}, Description: "x", CategoryID: "c1"},
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "empty description",
			expense: core.Expense{Amount: core.Money{Cents: 1}, Description: " ", CategoryID: "c1"},
			wantErr: core.ErrEmptyDescription,
		},
		{
			name:    "unknown category",
			expense: core.Expense{Amount: core.Money{Cents: 1}, Description: "x", CategoryID: "nope"},
			wantErr: core.ErrInvalidReference,
		},
		{
			name:    "foreign category",
			expense: core.Expense{Amount: core.Money{Cents: 1}, Description: "x", CategoryID: "foreign"},
			wantErr: core.ErrReferenceNotOwned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.expense, "a1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(store.expenses) != 0 {
		t.Errorf("rejected creates must not persist, store holds %d", len(store.expenses))
	}
	if len(pub.events) != 0 {
		t.Errorf("rejected creates must not publish, events = %v", pub.events)
	}
}

func TestExpenseService_CreateSurvivesPublishFailure(t *testing.T) {
	svc, store, pub := newExpenseFixture()
	pub.err = errors.New("broker down")

	_, err := svc.Create(context.Background(), core.Expense{
		Amount: core.Money{Cents: 100}, Description: "x", CategoryID: "c1",
	}, "a1")
	if err != nil {
		t.Fatalf("create should succeed despite publish failure: %v", err)
	}
	if len(store.expenses) != 1 {
		t.Errorf("expense not persisted")
	}
}

func TestExpenseService_NilPublisher(t *testing.T) {
	store := newFakeExpenseStore()
	cats := newFakeCategoryStore(core.Category{ID: "c1", Name: "food", OwnerID: "a1"})
	svc := NewExpenseService(store, cats, nil)

	_, err := svc.Create(context.Background(), core.Expense{
		Amount: core.Money{Cents: 100}, Description: "x", CategoryID: "c1",
	}, "a1")
	if err != nil {
		t.Fatalf("create with nil publisher: %v", err)
	}
}

func TestExpenseService_Update(t *testing.T) {
	svc, store, pub := newExpenseFixture()
	store.expenses["e1"] = core.Expense{
		ID: "e1", Amount: core.Money{Cents: 100}, Description: "before",
		Date: time.Now(), CategoryID: "c1", OwnerID: "a1",
	}

	desc := "after"
	got, err := svc.Update(context.Background(), "e1", "a1", storage.LedgerPatch{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Description != "after" {
		t.Errorf("description = %q, want after", got.Description)
	}
	if len(pub.events) != 1 || pub.events[0] != "expense:updated" {
		t.Errorf("events = %v, want [expense:updated]", pub.events)
	}

	// Moving to a foreign category fails before any write.
	ref := "foreign"
	if _, err := svc.Update(context.Background(), "e1", "a1", storage.LedgerPatch{ReferenceID: &ref}); !errors.Is(err, core.ErrReferenceNotOwned) {
		t.Errorf("foreign move error = %v, want ErrReferenceNotOwned", err)
	}

	// Bad patch fields are rejected.
	negative := int64(-5)
	if _, err := svc.Update(context.Background(), "e1", "a1", storage.LedgerPatch{AmountCents: &negative}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("negative patch error = %v, want ErrInvalidAmount", err)
	}
	blank := " "
	if _, err := svc.Update(context.Background(), "e1", "a1", storage.LedgerPatch{Description: &blank}); !errors.Is(err, core.ErrEmptyDescription) {
		t.Errorf("blank description error = %v, want ErrEmptyDescription", err)
	}

	// A foreign caller sees the entry as absent.
	if _, err := svc.Update(context.Background(), "e1", "a2", storage.LedgerPatch{Description: &desc}); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("foreign update error = %v, want ErrNotFound", err)
	}
}

func TestExpenseService_Delete(t *testing.T) {
	svc, store, pub := newExpenseFixture()
	store.expenses["e1"] = core.Expense{ID: "e1", OwnerID: "a1", CategoryID: "c1"}

	if err := svc.Delete(context.Background(), "e1", "a2"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(context.Background(), "e1", "a1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), "e1", "a1"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete error = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 1 || pub.events[0] != "expense:deleted" {
		t.Errorf("events = %v, want one expense:deleted", pub.events)
	}
}

func TestExpenseService_GetSummary(t *testing.T) {
	svc, store, _ := newExpenseFixture()
	now := time.Now()
	store.expenses["e1"] = core.Expense{ID: "e1", OwnerID: "a1", Amount: core.Money{Cents: 300}, Date: now}
	store.expenses["e2"] = core.Expense{ID: "e2", OwnerID: "a1", Amount: core.Money{Cents: 200}, Date: now.AddDate(0, 0, -40)}
	store.expenses["e3"] = core.Expense{ID: "e3", OwnerID: "a2", Amount: core.Money{Cents: 999}, Date: now}

	s, err := svc.GetSummary(context.Background(), "a1", core.RangeToday)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.TotalAmount.Cents != 300 || s.Count != 1 {
		t.Errorf("today summary = %+v, want 300 cents over 1 entry", s)
	}

	s, err = svc.GetSummary(context.Background(), "a1", core.RangeYear)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if s.Count == 0 {
		t.Error("year summary should include at least the entry from today")
	}
}
