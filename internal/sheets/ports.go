// Package sheets defines the export port the worker writes summaries to.
package sheets

import (
	"context"
	"time"
)

// SummaryRow is one refreshed combined summary for one account and window.
type SummaryRow struct {
	OwnerID       string
	Range         string
	TotalExpenses string
	TotalIncomes  string
	NetBalance    string
	ExpenseCount  int64
	IncomeCount   int64
	RefreshedAt   time.Time
}

// SummaryWriter appends summary rows to an external report target.
type SummaryWriter interface {
	AppendSummary(ctx context.Context, row SummaryRow) error
}
