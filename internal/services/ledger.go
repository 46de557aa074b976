// Package services orchestrates domain operations over storage and the
// async pipeline: the expense ledger, the asset registry, the net-worth
// aggregator, and user profiles.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"splitbook/internal/core"
	"splitbook/internal/storage"
)

var ErrForbidden = errors.New("forbidden")

// EventPublisher abstracts the AMQP client so services stay testable and the
// pipeline stays optional.
type EventPublisher interface {
	PublishSnapshotRequest(ctx context.Context, userID string) error
	PublishExpenseExport(ctx context.Context, expenseID uuid.UUID) error
}

// LedgerService owns expense records and their splits.
type LedgerService struct {
	repo      *storage.SQLiteRepository
	publisher EventPublisher
}

func NewLedgerService(repo *storage.SQLiteRepository, publisher EventPublisher) *LedgerService {
	return &LedgerService{repo: repo, publisher: publisher}
}

// CreateExpenseInput carries a validated-at-the-boundary expense request.
// Shares may be empty, meaning the payer bears the full amount alone.
type CreateExpenseInput struct {
	Description string
	Amount      core.Money
	Date        time.Time
	CategoryID  *uuid.UUID
	ReceiptID   *uuid.UUID
	SplitMode   core.SplitMode
	Shares      []core.SplitShare
}

// Create validates the expense and its splits, then persists both in a
// single transaction. Validation failures leave no observable side effect.
func (s *LedgerService) Create(ctx context.Context, payerID string, in CreateExpenseInput) (core.Expense, []core.ExpenseSplit, error) {
	expense := core.Expense{
		ID:          uuid.New(),
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date,
		PayerID:     payerID,
		CategoryID:  in.CategoryID,
		ReceiptID:   in.ReceiptID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := expense.Validate(); err != nil {
		return core.Expense{}, nil, err
	}

	var splits []core.ExpenseSplit
	if len(in.Shares) > 0 {
		var err error
		splits, err = core.ComputeSplits(expense.Amount, in.SplitMode, in.Shares, payerID)
		if err != nil {
			return core.Expense{}, nil, err
		}
		core.BindSplits(expense.ID, splits)
	}

	if err := s.repo.CreateExpense(ctx, expense, splits); err != nil {
		return core.Expense{}, nil, fmt.Errorf("create expense: %w", err)
	}

	if in.ReceiptID != nil {
		if err := s.repo.LinkReceipt(ctx, *in.ReceiptID, expense.ID); err != nil {
			// The back-reference is advisory; the expense itself is saved.
			slog.WarnContext(ctx, "Failed to link receipt",
				"receipt_id", *in.ReceiptID, "expense_id", expense.ID, "error", err)
		}
	}

	s.publishExport(ctx, expense.ID)
	return expense, splits, nil
}

// List returns the user's own expenses (payer-scoped), newest first.
func (s *LedgerService) List(ctx context.Context, userID string, limit, offset int) ([]core.Expense, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListExpensesByPayer(ctx, userID, limit, offset)
}

// ListShared returns expenses the user participates in without being the
// payer.
func (s *LedgerService) ListShared(ctx context.Context, userID string) ([]core.Expense, error) {
	return s.repo.ListSharedExpenses(ctx, userID)
}

// Get returns one expense with its splits, in insertion order. Only the
// payer and split participants may read it.
func (s *LedgerService) Get(ctx context.Context, userID string, id uuid.UUID) (core.Expense, []core.ExpenseSplit, error) {
	expense, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return core.Expense{}, nil, err
	}
	splits, err := s.repo.ListSplits(ctx, id)
	if err != nil {
		return core.Expense{}, nil, err
	}
	if expense.PayerID != userID && !participates(splits, userID) {
		return core.Expense{}, nil, fmt.Errorf("%w: expense %s belongs to another user", ErrForbidden, id)
	}
	return expense, splits, nil
}

func participates(splits []core.ExpenseSplit, userID string) bool {
	for _, sp := range splits {
		if sp.UserID == userID {
			return true
		}
	}
	return false
}

// Delete removes an expense and all its splits. Only the payer may delete.
func (s *LedgerService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	expense, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if expense.PayerID != userID {
		return fmt.Errorf("%w: expense %s belongs to another user", ErrForbidden, id)
	}
	return s.repo.DeleteExpense(ctx, id)
}

func (s *LedgerService) publishExport(ctx context.Context, id uuid.UUID) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseExport(ctx, id); err != nil {
		// Export is best-effort; the ledger stays the source of truth.
		slog.ErrorContext(ctx, "Failed to publish export message", "id", id, "error", err)
	}
}
