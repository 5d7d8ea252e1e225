// Package worker consumes ledger events and refreshes the exported summary
// report for the affected account.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/sheets"
)

// CombinedSummarizer is the summary capability the worker refreshes from.
type CombinedSummarizer interface {
	Combined(ctx context.Context, ownerID string, rng core.DateRange) (core.CombinedSummary, error)
}

// ExportWorker recomputes the month summary of the account behind each
// ledger event and appends it to the export target. Events carry ids only,
// so recomputing from the database always reflects the latest state no
// matter how stale or out of order the messages arrive.
type ExportWorker struct {
	summaries CombinedSummarizer
	writer    sheets.SummaryWriter
}

func NewExportWorker(summaries CombinedSummarizer, writer sheets.SummaryWriter) *ExportWorker {
	return &ExportWorker{summaries: summaries, writer: writer}
}

// HandleLedgerEvent processes one event from the queue.
func (w *ExportWorker) HandleLedgerEvent(ctx context.Context, msg *amqp.LedgerEventMessage) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"entry_type", msg.EntryType,
		"action", msg.Action,
		"entry_id", msg.EntryID,
		"owner_id", msg.OwnerID)

	combined, err := w.summaries.Combined(ctx, msg.OwnerID, core.RangeMonth)
	if err != nil {
		return fmt.Errorf("compute combined summary: %w", err)
	}

	row := sheets.SummaryRow{
		OwnerID:       msg.OwnerID,
		Range:         string(core.RangeMonth),
		TotalExpenses: combined.TotalExpenses.String(),
		TotalIncomes:  combined.TotalIncomes.String(),
		NetBalance:    combined.NetBalance.String(),
		ExpenseCount:  combined.ExpenseCount,
		IncomeCount:   combined.IncomeCount,
		RefreshedAt:   time.Now(),
	}
	if err := w.writer.AppendSummary(ctx, row); err != nil {
		return fmt.Errorf("export summary: %w", err)
	}

	return nil
}
