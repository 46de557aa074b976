package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"splitbook/internal/core"
	"splitbook/internal/storage"
)

// NetWorthService computes point-in-time snapshots from the asset registry
// and serves the append-only history.
type NetWorthService struct {
	repo *storage.SQLiteRepository
	// defaultCurrency labels snapshots for users with no assets yet.
	defaultCurrency string
}

func NewNetWorthService(repo *storage.SQLiteRepository, defaultCurrency string) *NetWorthService {
	return &NetWorthService{repo: repo, defaultCurrency: defaultCurrency}
}

// Snapshot sums the user's current asset values and appends one entry.
// All assets must share a currency; mixed portfolios are rejected rather
// than silently converted.
func (s *NetWorthService) Snapshot(ctx context.Context, userID string) (core.NetWorthEntry, error) {
	assets, err := s.repo.ListAssets(ctx, userID)
	if err != nil {
		return core.NetWorthEntry{}, fmt.Errorf("list assets: %w", err)
	}

	total := core.Money{Currency: s.defaultCurrency}
	if len(assets) > 0 {
		total = core.Money{Currency: assets[0].Value.Currency}
		for _, a := range assets {
			total, err = total.Add(a.Value)
			if err != nil {
				return core.NetWorthEntry{}, fmt.Errorf("sum asset %s: %w", a.ID, err)
			}
		}
	}

	entry := core.NetWorthEntry{
		ID:         uuid.New(),
		UserID:     userID,
		TotalValue: total,
		Date:       time.Now().UTC(),
	}
	if err := s.repo.InsertNetWorthEntry(ctx, entry); err != nil {
		return core.NetWorthEntry{}, fmt.Errorf("append snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Net worth snapshot taken",
		"user_id", userID,
		"total", total.String(),
		"assets", len(assets))
	return entry, nil
}

// History returns snapshots newest first, optionally bounded by [from, to].
func (s *NetWorthService) History(ctx context.Context, userID string, from, to *time.Time) ([]core.NetWorthEntry, error) {
	return s.repo.ListNetWorthEntries(ctx, userID, from, to)
}
