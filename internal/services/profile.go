package services

import (
	"context"
	"errors"
	"fmt"

	"splitbook/internal/core"
	"splitbook/internal/storage"
)

// ProfileService manages the one-to-one user profile rows.
type ProfileService struct {
	repo            *storage.SQLiteRepository
	defaultCurrency string
}

func NewProfileService(repo *storage.SQLiteRepository, defaultCurrency string) *ProfileService {
	return &ProfileService{repo: repo, defaultCurrency: defaultCurrency}
}

func (s *ProfileService) Get(ctx context.Context, userID string) (core.UserProfile, error) {
	return s.repo.GetProfile(ctx, userID)
}

// UpsertProfileInput merges only provided fields into the stored profile;
// missing fields keep their current (or default) values.
type UpsertProfileInput struct {
	MonthlyIncome   *core.Money
	Currency        *string
	ThemePreference *string
}

func (s *ProfileService) Upsert(ctx context.Context, userID string, in UpsertProfileInput) (core.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return core.UserProfile{}, fmt.Errorf("load profile: %w", err)
		}
		profile = core.UserProfile{
			UserID:          userID,
			MonthlyIncome:   core.Money{Currency: s.defaultCurrency},
			Currency:        s.defaultCurrency,
			ThemePreference: "system",
		}
	}

	if in.Currency != nil {
		profile.Currency = *in.Currency
	}
	if in.MonthlyIncome != nil {
		profile.MonthlyIncome = *in.MonthlyIncome
	}
	if in.ThemePreference != nil {
		profile.ThemePreference = *in.ThemePreference
	}
	profile.MonthlyIncome.Currency = profile.Currency

	if err := profile.Validate(); err != nil {
		return core.UserProfile{}, err
	}
	if err := s.repo.UpsertProfile(ctx, profile); err != nil {
		return core.UserProfile{}, fmt.Errorf("upsert profile: %w", err)
	}
	return profile, nil
}
