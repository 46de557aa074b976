package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitbook/internal/core"
	"splitbook/internal/storage"
)

func TestProfileUpsert_CreatesDefaults(t *testing.T) {
	repo := newTestRepo(t)
	profiles := NewProfileService(repo, "USD")
	ctx := context.Background()

	_, err := profiles.Get(ctx, "alice")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	theme := "dark"
	profile, err := profiles.Upsert(ctx, "alice", UpsertProfileInput{ThemePreference: &theme})
	require.NoError(t, err)
	assert.Equal(t, "USD", profile.Currency)
	assert.Equal(t, "dark", profile.ThemePreference)
	assert.True(t, profile.MonthlyIncome.IsZero())
}

func TestProfileUpsert_MergesFields(t *testing.T) {
	repo := newTestRepo(t)
	profiles := NewProfileService(repo, "USD")
	ctx := context.Background()

	income := core.MustMoney("5000.00", "USD")
	_, err := profiles.Upsert(ctx, "alice", UpsertProfileInput{MonthlyIncome: &income})
	require.NoError(t, err)

	// A later currency change re-tags the stored income.
	eur := "EUR"
	profile, err := profiles.Upsert(ctx, "alice", UpsertProfileInput{Currency: &eur})
	require.NoError(t, err)
	assert.Equal(t, "EUR", profile.Currency)
	assert.Equal(t, int64(500000), profile.MonthlyIncome.Cents)
	assert.Equal(t, "EUR", profile.MonthlyIncome.Currency)
}
