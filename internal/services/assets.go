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

// AssetService owns per-user asset records. Every successful mutation
// triggers a net-worth snapshot so the time series tracks the registry:
// asynchronously through the queue when a publisher is wired, synchronously
// otherwise.
type AssetService struct {
	repo      *storage.SQLiteRepository
	netWorth  *NetWorthService
	publisher EventPublisher
}

func NewAssetService(repo *storage.SQLiteRepository, netWorth *NetWorthService, publisher EventPublisher) *AssetService {
	return &AssetService{repo: repo, netWorth: netWorth, publisher: publisher}
}

func (s *AssetService) List(ctx context.Context, userID string) ([]core.Asset, error) {
	return s.repo.ListAssets(ctx, userID)
}

func (s *AssetService) Create(ctx context.Context, userID string, name string, value core.Money, typ core.AssetType) (core.Asset, error) {
	asset := core.Asset{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Value:       value,
		Type:        typ,
		LastUpdated: time.Now().UTC(),
	}
	if err := asset.Validate(); err != nil {
		return core.Asset{}, err
	}
	if err := s.repo.CreateAsset(ctx, asset); err != nil {
		return core.Asset{}, fmt.Errorf("create asset: %w", err)
	}
	s.triggerSnapshot(ctx, userID)
	return asset, nil
}

// UpdateAssetInput merges only the provided fields; lastUpdated is always
// refreshed.
type UpdateAssetInput struct {
	Name  *string
	Value *core.Money
	Type  *core.AssetType
}

func (s *AssetService) Update(ctx context.Context, userID string, id uuid.UUID, in UpdateAssetInput) (core.Asset, error) {
	asset, err := s.repo.GetAsset(ctx, id)
	if err != nil {
		return core.Asset{}, err
	}
	if asset.UserID != userID {
		return core.Asset{}, fmt.Errorf("%w: asset %s belongs to another user", ErrForbidden, id)
	}

	if in.Name != nil {
		asset.Name = *in.Name
	}
	if in.Value != nil {
		asset.Value = *in.Value
	}
	if in.Type != nil {
		asset.Type = *in.Type
	}
	asset.LastUpdated = time.Now().UTC()

	if err := asset.Validate(); err != nil {
		return core.Asset{}, err
	}
	if err := s.repo.UpdateAsset(ctx, asset); err != nil {
		return core.Asset{}, fmt.Errorf("update asset: %w", err)
	}
	s.triggerSnapshot(ctx, userID)
	return asset, nil
}

func (s *AssetService) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	asset, err := s.repo.GetAsset(ctx, id)
	if err != nil {
		return err
	}
	if asset.UserID != userID {
		return fmt.Errorf("%w: asset %s belongs to another user", ErrForbidden, id)
	}
	if err := s.repo.DeleteAsset(ctx, id); err != nil {
		return err
	}
	s.triggerSnapshot(ctx, userID)
	return nil
}

func (s *AssetService) triggerSnapshot(ctx context.Context, userID string) {
	if s.publisher != nil {
		err := s.publisher.PublishSnapshotRequest(ctx, userID)
		if err == nil {
			return
		}
		slog.WarnContext(ctx, "Snapshot publish failed, falling back to synchronous snapshot",
			"user_id", userID, "error", err)
	}
	if _, err := s.netWorth.Snapshot(ctx, userID); err != nil {
		// The asset write already committed; a missed sample is recoverable
		// via the manual snapshot endpoint.
		slog.ErrorContext(ctx, "Synchronous snapshot failed", "user_id", userID, "error", err)
	}
}
