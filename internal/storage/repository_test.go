package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"splitbook/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err, "failed to open in-memory database")
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testExpense(payerID string) core.Expense {
	return core.Expense{
		ID:          uuid.New(),
		Description: "groceries",
		Amount:      core.MustMoney("42.50", "USD"),
		Date:        time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		PayerID:     payerID,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestCreateAndGetExpense(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expense := testExpense("alice")
	splits := []core.ExpenseSplit{
		{ID: uuid.New(), ExpenseID: expense.ID, UserID: "alice", AmountOwed: core.MustMoney("21.25", "USD"), PercentBP: 5000},
		{ID: uuid.New(), ExpenseID: expense.ID, UserID: "bob", AmountOwed: core.MustMoney("21.25", "USD"), PercentBP: 5000},
	}

	require.NoError(t, repo.CreateExpense(ctx, expense, splits))

	got, err := repo.GetExpense(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, expense.ID, got.ID)
	assert.Equal(t, "groceries", got.Description)
	assert.Equal(t, int64(4250), got.Amount.Cents)
	assert.Equal(t, "USD", got.Amount.Currency)
	assert.Equal(t, "alice", got.PayerID)
	assert.Nil(t, got.CategoryID)

	gotSplits, err := repo.ListSplits(ctx, expense.ID)
	require.NoError(t, err)
	require.Len(t, gotSplits, 2)
	assert.Equal(t, "alice", gotSplits[0].UserID)
	assert.Equal(t, "bob", gotSplits[1].UserID)
	assert.Equal(t, int64(2125), gotSplits[0].AmountOwed.Cents)
	assert.Equal(t, int64(5000), gotSplits[1].PercentBP)
}

func TestGetExpense_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetExpense(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListExpensesByPayer_Ordering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := testExpense("alice")
	older.Date = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := testExpense("alice")
	newer.Description = "dinner"
	newer.Date = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	other := testExpense("bob")

	require.NoError(t, repo.CreateExpense(ctx, older, nil))
	require.NoError(t, repo.CreateExpense(ctx, newer, nil))
	require.NoError(t, repo.CreateExpense(ctx, other, nil))

	expenses, err := repo.ListExpensesByPayer(ctx, "alice", 10, 0)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "dinner", expenses[0].Description, "newest first")
	assert.Equal(t, "groceries", expenses[1].Description)

	page, err := repo.ListExpensesByPayer(ctx, "alice", 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "groceries", page[0].Description)
}

func TestListSharedExpenses(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// alice pays and bob participates
	expense := testExpense("alice")
	splits := []core.ExpenseSplit{
		{ID: uuid.New(), ExpenseID: expense.ID, UserID: "alice", AmountOwed: core.MustMoney("21.25", "USD"), PercentBP: 5000},
		{ID: uuid.New(), ExpenseID: expense.ID, UserID: "bob", AmountOwed: core.MustMoney("21.25", "USD"), PercentBP: 5000},
	}
	require.NoError(t, repo.CreateExpense(ctx, expense, splits))

	// bob pays alone, not shared with anyone
	solo := testExpense("bob")
	require.NoError(t, repo.CreateExpense(ctx, solo, nil))

	shared, err := repo.ListSharedExpenses(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, expense.ID, shared[0].ID)

	// the payer's own expense is not in their shared list
	shared, err = repo.ListSharedExpenses(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, shared)
}

func TestDeleteExpense_CascadesToSplits(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	expense := testExpense("alice")
	splits := []core.ExpenseSplit{
		{ID: uuid.New(), ExpenseID: expense.ID, UserID: "alice", AmountOwed: core.MustMoney("42.50", "USD"), PercentBP: 10000},
	}
	require.NoError(t, repo.CreateExpense(ctx, expense, splits))

	require.NoError(t, repo.DeleteExpense(ctx, expense.ID))

	_, err := repo.GetExpense(ctx, expense.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	gotSplits, err := repo.ListSplits(ctx, expense.ID)
	require.NoError(t, err)
	assert.Empty(t, gotSplits)

	assert.ErrorIs(t, repo.DeleteExpense(ctx, expense.ID), ErrNotFound)
}

func TestAssetLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	asset := core.Asset{
		ID:          uuid.New(),
		UserID:      "alice",
		Name:        "Brokerage",
		Value:       core.MustMoney("1000.00", "USD"),
		Type:        core.AssetInvestment,
		LastUpdated: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateAsset(ctx, asset))

	got, err := repo.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, "Brokerage", got.Name)
	assert.Equal(t, core.AssetInvestment, got.Type)

	asset.Value = core.MustMoney("1250.00", "USD")
	require.NoError(t, repo.UpdateAsset(ctx, asset))

	got, err = repo.GetAsset(ctx, asset.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(125000), got.Value.Cents)

	owners, err := repo.ListAssetOwners(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, owners)

	require.NoError(t, repo.DeleteAsset(ctx, asset.ID))
	_, err = repo.GetAsset(ctx, asset.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.DeleteAsset(ctx, asset.ID), ErrNotFound)
}

func TestNetWorthEntries_RangeFilter(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	for i, d := range dates {
		entry := core.NetWorthEntry{
			ID:         uuid.New(),
			UserID:     "alice",
			TotalValue: core.Money{Cents: int64(1000 * (i + 1)), Currency: "USD"},
			Date:       d,
		}
		require.NoError(t, repo.InsertNetWorthEntry(ctx, entry))
	}

	all, err := repo.ListNetWorthEntries(ctx, "alice", nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].Date.After(all[1].Date), "newest first")

	from := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)
	window, err := repo.ListNetWorthEntries(ctx, "alice", &from, &to)
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, int64(2000), window[0].TotalValue.Cents)
}

func TestProfileUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.GetProfile(ctx, "alice")
	assert.ErrorIs(t, err, ErrNotFound)

	profile := core.UserProfile{
		UserID:          "alice",
		MonthlyIncome:   core.MustMoney("5000.00", "USD"),
		Currency:        "USD",
		ThemePreference: "dark",
	}
	require.NoError(t, repo.UpsertProfile(ctx, profile))

	profile.ThemePreference = "light"
	require.NoError(t, repo.UpsertProfile(ctx, profile))

	got, err := repo.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "light", got.ThemePreference)
	assert.Equal(t, int64(500000), got.MonthlyIncome.Cents)
}

func TestListCategories_Seeded(t *testing.T) {
	repo := newTestRepo(t)

	categories, err := repo.ListCategories(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, categories, "migrations seed default categories")
	for _, c := range categories {
		assert.NotEmpty(t, c.Name)
	}
}

func TestReceiptLink(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	receipt := core.Receipt{
		ID:         uuid.New(),
		URL:        "https://example.com/receipt.jpg",
		ScanData:   []byte(`{"total":"12.34"}`),
		UploadedBy: "alice",
		Date:       time.Now().UTC(),
	}
	require.NoError(t, repo.CreateReceipt(ctx, receipt))

	expense := testExpense("alice")
	require.NoError(t, repo.CreateExpense(ctx, expense, nil))

	require.NoError(t, repo.LinkReceipt(ctx, receipt.ID, expense.ID))
	assert.ErrorIs(t, repo.LinkReceipt(ctx, uuid.New(), expense.ID), ErrNotFound)
}
