package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"tally/internal/core"
)

type fakeAggregator struct {
	summary core.TypeSummary
	err     error
	calls   int64

	// start/end of the last call, for window assertions.
	lastStart, lastEnd time.Time
}

func (f *fakeAggregator) aggregate(start, end time.Time) (core.TypeSummary, error) {
	atomic.AddInt64(&f.calls, 1)
	f.lastStart, f.lastEnd = start, end
	if f.err != nil {
		return core.TypeSummary{}, f.err
	}
	return f.summary, nil
}

type fakeExpenseAgg struct{ fakeAggregator }

func (f *fakeExpenseAgg) AggregateExpenses(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error) {
	return f.aggregate(start, end)
}

type fakeIncomeAgg struct{ fakeAggregator }

func (f *fakeIncomeAgg) AggregateIncomes(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error) {
	return f.aggregate(start, end)
}

func TestSummaryService_Combined(t *testing.T) {
	exp := &fakeExpenseAgg{fakeAggregator{summary: core.TypeSummary{TotalAmount: core.Money{Cents: 2500}, Count: 4}}}
	inc := &fakeIncomeAgg{fakeAggregator{summary: core.TypeSummary{TotalAmount: core.Money{Cents: 10000}, Count: 1}}}
	svc := NewSummaryService(exp, inc)

	got, err := svc.Combined(context.Background(), "a1", core.RangeMonth)
	if err != nil {
		t.Fatalf("combined: %v", err)
	}
	if got.TotalExpenses.Cents != 2500 || got.TotalIncomes.Cents != 10000 {
		t.Errorf("totals = %+v", got)
	}
	if got.NetBalance.Cents != 7500 {
		t.Errorf("net balance = %d, want 7500", got.NetBalance.Cents)
	}
	if got.ExpenseCount != 4 || got.IncomeCount != 1 {
		t.Errorf("counts = %d/%d, want 4/1", got.ExpenseCount, got.IncomeCount)
	}
	if exp.calls != 1 || inc.calls != 1 {
		t.Errorf("aggregator calls = %d/%d, want 1/1", exp.calls, inc.calls)
	}

	// Both aggregates must see the identical resolved window.
	if !exp.lastStart.Equal(inc.lastStart) || !exp.lastEnd.Equal(inc.lastEnd) {
		t.Errorf("windows differ: expenses [%v, %v] incomes [%v, %v]",
			exp.lastStart, exp.lastEnd, inc.lastStart, inc.lastEnd)
	}
}

func TestSummaryService_CombinedFailsWhole(t *testing.T) {
	wantErr := errors.New("aggregate blew up")

	t.Run("expense side fails", func(t *testing.T) {
		exp := &fakeExpenseAgg{fakeAggregator{err: wantErr}}
		inc := &fakeIncomeAgg{}
		if _, err := NewSummaryService(exp, inc).Combined(context.Background(), "a1", core.RangeToday); !errors.Is(err, wantErr) {
			t.Fatalf("error = %v, want %v", err, wantErr)
		}
	})

	t.Run("income side fails", func(t *testing.T) {
		exp := &fakeExpenseAgg{}
		inc := &fakeIncomeAgg{fakeAggregator{err: wantErr}}
		if _, err := NewSummaryService(exp, inc).Combined(context.Background(), "a1", core.RangeToday); !errors.Is(err, wantErr) {
			t.Fatalf("error = %v, want %v", err, wantErr)
		}
	})
}

func TestSummaryService_PerTypeSummaries(t *testing.T) {
	exp := &fakeExpenseAgg{fakeAggregator{summary: core.TypeSummary{TotalAmount: core.Money{Cents: 700}, Count: 2}}}
	inc := &fakeIncomeAgg{fakeAggregator{summary: core.TypeSummary{TotalAmount: core.Money{Cents: 900}, Count: 3}}}
	svc := NewSummaryService(exp, inc)

	es, err := svc.ExpenseSummary(context.Background(), "a1", core.RangeWeek)
	if err != nil || es.TotalAmount.Cents != 700 {
		t.Fatalf("expense summary = %+v, err %v", es, err)
	}
	is, err := svc.IncomeSummary(context.Background(), "a1", core.RangeWeek)
	if err != nil || is.Count != 3 {
		t.Fatalf("income summary = %+v, err %v", is, err)
	}
	if inc.calls != 1 || exp.calls != 1 {
		t.Errorf("aggregator calls = %d/%d, want 1/1", exp.calls, inc.calls)
	}
}
