package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"splitbook/internal/amqp"
	"splitbook/internal/export"
	"splitbook/internal/services"
	"splitbook/internal/storage"
)

// SnapshotWorker consumes queued work: net worth snapshot requests and
// expense exports to the spreadsheet.
type SnapshotWorker struct {
	storage  *storage.SQLiteRepository
	netWorth *services.NetWorthService
	writer   export.ExpenseWriter
}

var _ amqp.Handler = (*SnapshotWorker)(nil)

func NewSnapshotWorker(storage *storage.SQLiteRepository, netWorth *services.NetWorthService, writer export.ExpenseWriter) *SnapshotWorker {
	return &SnapshotWorker{
		storage:  storage,
		netWorth: netWorth,
		writer:   writer,
	}
}

// HandleSnapshotRequest recomputes the user's net worth from their assets.
func (w *SnapshotWorker) HandleSnapshotRequest(ctx context.Context, msg *amqp.SnapshotRequestMessage) error {
	slog.InfoContext(ctx, "Processing snapshot request", "user_id", msg.UserID)

	entry, err := w.netWorth.Snapshot(ctx, msg.UserID)
	if err != nil {
		return fmt.Errorf("compute snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Snapshot recorded",
		"user_id", msg.UserID,
		"total", entry.TotalValue.Decimal(),
		"currency", entry.TotalValue.Currency)

	return nil
}

// HandleExpenseExport fetches the expense and appends it to the spreadsheet.
func (w *SnapshotWorker) HandleExpenseExport(ctx context.Context, msg *amqp.ExpenseExportMessage) error {
	slog.InfoContext(ctx, "Processing expense export", "expense_id", msg.ID)

	if w.writer == nil {
		slog.WarnContext(ctx, "No expense writer configured, skipping export",
			"expense_id", msg.ID)
		return nil
	}

	expense, err := w.storage.GetExpense(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	ref, err := w.writer.Append(ctx, expense)
	if err != nil {
		return fmt.Errorf("append to sheets: %w", err)
	}

	slog.InfoContext(ctx, "Successfully exported expense",
		"expense_id", msg.ID,
		"sheets_ref", ref,
		"description", expense.Description,
		"amount", expense.Amount.Decimal())

	return nil
}

// RunPeriodicSnapshots refreshes snapshots for every user with assets at the
// given interval. Backup mechanism in case queued requests are lost.
func (w *SnapshotWorker) RunPeriodicSnapshots(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.snapshotAllUsers(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic snapshot pass failed", "error", err)
			}
		}
	}
}

func (w *SnapshotWorker) snapshotAllUsers(ctx context.Context) error {
	userIDs, err := w.storage.ListAssetOwners(ctx)
	if err != nil {
		return fmt.Errorf("list asset owners: %w", err)
	}

	if len(userIDs) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Refreshing snapshots", "users", len(userIDs))

	for _, userID := range userIDs {
		if _, err := w.netWorth.Snapshot(ctx, userID); err != nil {
			slog.ErrorContext(ctx, "Failed to refresh snapshot",
				"user_id", userID, "error", err)
		}
	}

	return nil
}
