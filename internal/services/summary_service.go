package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/core"
)

// ExpenseAggregator and IncomeAggregator are the two aggregation
// capabilities the composer fans out to.
type ExpenseAggregator interface {
	AggregateExpenses(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error)
}

type IncomeAggregator interface {
	AggregateIncomes(ctx context.Context, ownerID string, start, end time.Time) (core.TypeSummary, error)
}

// SummaryService resolves the caller's date range once and computes both
// per-type aggregates over that same window, merging them into the combined
// report.
type SummaryService struct {
	expenses ExpenseAggregator
	incomes  IncomeAggregator
}

func NewSummaryService(expenses ExpenseAggregator, incomes IncomeAggregator) *SummaryService {
	return &SummaryService{expenses: expenses, incomes: incomes}
}

func (s *SummaryService) ExpenseSummary(ctx context.Context, ownerID string, rng core.DateRange) (core.TypeSummary, error) {
	start, end := rng.Resolve()
	return s.expenses.AggregateExpenses(ctx, ownerID, start, end)
}

func (s *SummaryService) IncomeSummary(ctx context.Context, ownerID string, rng core.DateRange) (core.TypeSummary, error) {
	start, end := rng.Resolve()
	return s.incomes.AggregateIncomes(ctx, ownerID, start, end)
}

// Combined computes the merged expense/income report. Both aggregates run
// concurrently against the identical window; if either fails the whole call
// fails, never a partial report.
func (s *SummaryService) Combined(ctx context.Context, ownerID string, rng core.DateRange) (core.CombinedSummary, error) {
	start, end := rng.Resolve()

	var expenses, incomes core.TypeSummary
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.expenses.AggregateExpenses(ctx, ownerID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = s.incomes.AggregateIncomes(ctx, ownerID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Failed to compute combined summary",
			"owner_id", ownerID, "range", string(rng), "error", err)
		return core.CombinedSummary{}, err
	}

	combined := core.Combine(expenses, incomes)
	slog.InfoContext(ctx, "Combined summary computed",
		"owner_id", ownerID,
		"range", string(rng),
		"expense_count", combined.ExpenseCount,
		"income_count", combined.IncomeCount,
		"net_balance_cents", combined.NetBalance.Cents)
	return combined, nil
}
