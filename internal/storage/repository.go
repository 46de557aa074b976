// Package storage persists the domain model in SQLite.
//
// Amounts are stored as integer minor units plus a currency column; multi-row
// writes (expense+splits, cascade deletes) run inside a single transaction so
// readers never observe a partial split set.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"splitbook/internal/core"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath == ":memory:" {
		// An in-memory database is private to this connection, so migrations
		// must run on it directly. A single connection keeps it alive.
		db.SetMaxOpenConns(1)
		if err := runMigrationsOn(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	} else {
		if err := RunMigrations(dbPath); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateExpense persists an expense and its splits atomically.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense, splits []core.ExpenseSplit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, description, amount_cents, currency, date, payer_id, category_id, receipt_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.Description, e.Amount.Cents, e.Amount.Currency, e.Date,
		e.PayerID, uuidPtr(e.CategoryID), uuidPtr(e.ReceiptID), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	for _, s := range splits {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_splits (id, expense_id, user_id, amount_owed_cents, currency, percent_bp)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID.String(), s.ExpenseID.String(), s.UserID, s.AmountOwed.Cents, s.AmountOwed.Currency, s.PercentBP)
		if err != nil {
			return fmt.Errorf("insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", e.ID,
		"payer_id", e.PayerID,
		"amount", e.Amount.String(),
		"splits", len(splits))
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id uuid.UUID) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, description, amount_cents, currency, date, payer_id, category_id, receipt_id, created_at
		 FROM expenses WHERE id = ?`, id.String())
	e, err := scanExpense(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, ErrNotFound
		}
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpensesByPayer returns the user's own expenses, newest date first.
func (r *SQLiteRepository) ListExpensesByPayer(ctx context.Context, payerID string, limit, offset int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, description, amount_cents, currency, date, payer_id, category_id, receipt_id, created_at
		 FROM expenses WHERE payer_id = ?
		 ORDER BY date DESC, created_at DESC
		 LIMIT ? OFFSET ?`, payerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// ListSharedExpenses returns expenses where the user participates in a split
// without being the payer.
func (r *SQLiteRepository) ListSharedExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT e.id, e.description, e.amount_cents, e.currency, e.date, e.payer_id, e.category_id, e.receipt_id, e.created_at
		 FROM expenses e
		 INNER JOIN expense_splits s ON s.expense_id = e.id
		 WHERE s.user_id = ? AND e.payer_id != ?
		 ORDER BY e.date DESC, e.created_at DESC`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list shared expenses: %w", err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

func (r *SQLiteRepository) ListSplits(ctx context.Context, expenseID uuid.UUID) ([]core.ExpenseSplit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, expense_id, user_id, amount_owed_cents, currency, percent_bp
		 FROM expense_splits WHERE expense_id = ? ORDER BY rowid`, expenseID.String())
	if err != nil {
		return nil, fmt.Errorf("list splits: %w", err)
	}
	defer rows.Close()

	var splits []core.ExpenseSplit
	for rows.Next() {
		var (
			s            core.ExpenseSplit
			idStr, expID string
		)
		if err := rows.Scan(&idStr, &expID, &s.UserID, &s.AmountOwed.Cents, &s.AmountOwed.Currency, &s.PercentBP); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		if s.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse split id: %w", err)
		}
		if s.ExpenseID, err = uuid.Parse(expID); err != nil {
			return nil, fmt.Errorf("parse split expense id: %w", err)
		}
		splits = append(splits, s)
	}
	return splits, rows.Err()
}

// DeleteExpense removes the splits then the expense in one transaction so a
// crash mid-delete cannot orphan splits.
func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM expense_splits WHERE expense_id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete splits: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Expense deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) CreateAsset(ctx context.Context, a core.Asset) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO assets (id, user_id, name, value_cents, currency, type, last_updated)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.UserID, a.Name, a.Value.Cents, a.Value.Currency, string(a.Type), a.LastUpdated)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetAsset(ctx context.Context, id uuid.UUID) (core.Asset, error) {
	var (
		a     core.Asset
		idStr string
		typ   string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, value_cents, currency, type, last_updated
		 FROM assets WHERE id = ?`, id.String()).
		Scan(&idStr, &a.UserID, &a.Name, &a.Value.Cents, &a.Value.Currency, &typ, &a.LastUpdated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Asset{}, ErrNotFound
		}
		return core.Asset{}, fmt.Errorf("get asset: %w", err)
	}
	if a.ID, err = uuid.Parse(idStr); err != nil {
		return core.Asset{}, fmt.Errorf("parse asset id: %w", err)
	}
	a.Type = core.AssetType(typ)
	return a, nil
}

func (r *SQLiteRepository) ListAssets(ctx context.Context, userID string) ([]core.Asset, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, value_cents, currency, type, last_updated
		 FROM assets WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []core.Asset
	for rows.Next() {
		var (
			a     core.Asset
			idStr string
			typ   string
		)
		if err := rows.Scan(&idStr, &a.UserID, &a.Name, &a.Value.Cents, &a.Value.Currency, &typ, &a.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		if a.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse asset id: %w", err)
		}
		a.Type = core.AssetType(typ)
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func (r *SQLiteRepository) UpdateAsset(ctx context.Context, a core.Asset) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE assets SET name = ?, value_cents = ?, currency = ?, type = ?, last_updated = ?
		 WHERE id = ?`,
		a.Name, a.Value.Cents, a.Value.Currency, string(a.Type), a.LastUpdated, a.ID.String())
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM assets WHERE id = ?`, id.String())
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAssetOwners returns the distinct user ids that own at least one asset.
func (r *SQLiteRepository) ListAssetOwners(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM assets ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("list asset owners: %w", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan asset owner: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}

// InsertNetWorthEntry appends a snapshot; entries are never updated.
func (r *SQLiteRepository) InsertNetWorthEntry(ctx context.Context, e core.NetWorthEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO net_worth_entries (id, user_id, total_value_cents, currency, date)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID.String(), e.UserID, e.TotalValue.Cents, e.TotalValue.Currency, e.Date)
	if err != nil {
		return fmt.Errorf("insert net worth entry: %w", err)
	}
	return nil
}

// ListNetWorthEntries returns snapshots newest first, optionally bounded by
// an inclusive [from, to] date range.
func (r *SQLiteRepository) ListNetWorthEntries(ctx context.Context, userID string, from, to *time.Time) ([]core.NetWorthEntry, error) {
	query := `SELECT id, user_id, total_value_cents, currency, date
	          FROM net_worth_entries WHERE user_id = ?`
	args := []any{userID}
	if from != nil {
		query += ` AND date >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND date <= ?`
		args = append(args, *to)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list net worth entries: %w", err)
	}
	defer rows.Close()

	var entries []core.NetWorthEntry
	for rows.Next() {
		var (
			e     core.NetWorthEntry
			idStr string
		)
		if err := rows.Scan(&idStr, &e.UserID, &e.TotalValue.Cents, &e.TotalValue.Currency, &e.Date); err != nil {
			return nil, fmt.Errorf("scan net worth entry: %w", err)
		}
		if e.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse entry id: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) GetProfile(ctx context.Context, userID string) (core.UserProfile, error) {
	var p core.UserProfile
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, monthly_income_cents, currency, theme_preference
		 FROM user_profiles WHERE user_id = ?`, userID).
		Scan(&p.UserID, &p.MonthlyIncome.Cents, &p.Currency, &p.ThemePreference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.UserProfile{}, ErrNotFound
		}
		return core.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	p.MonthlyIncome.Currency = p.Currency
	return p, nil
}

func (r *SQLiteRepository) UpsertProfile(ctx context.Context, p core.UserProfile) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, monthly_income_cents, currency, theme_preference)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     monthly_income_cents = excluded.monthly_income_cents,
		     currency = excluded.currency,
		     theme_preference = excluded.theme_preference`,
		p.UserID, p.MonthlyIncome.Cents, p.Currency, p.ThemePreference)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, color, icon FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		var (
			c     core.Category
			idStr string
		)
		if err := rows.Scan(&idStr, &c.Name, &c.Color, &c.Icon); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if c.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("parse category id: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) CreateReceipt(ctx context.Context, rc core.Receipt) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO receipts (id, url, scan_data, uploaded_by, expense_id, date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rc.ID.String(), rc.URL, nullableBytes(rc.ScanData), rc.UploadedBy, uuidPtr(rc.ExpenseID), rc.Date)
	if err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// LinkReceipt sets the back-reference from a receipt to the expense it was
// applied to, after the fact.
func (r *SQLiteRepository) LinkReceipt(ctx context.Context, receiptID, expenseID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE receipts SET expense_id = ? WHERE id = ?`, expenseID.String(), receiptID.String())
	if err != nil {
		return fmt.Errorf("link receipt: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                 core.Expense
		idStr             string
		category, receipt sql.NullString
	)
	err := row.Scan(&idStr, &e.Description, &e.Amount.Cents, &e.Amount.Currency,
		&e.Date, &e.PayerID, &category, &receipt, &e.CreatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	if e.ID, err = uuid.Parse(idStr); err != nil {
		return core.Expense{}, fmt.Errorf("parse expense id: %w", err)
	}
	if category.Valid {
		cid, err := uuid.Parse(category.String)
		if err != nil {
			return core.Expense{}, fmt.Errorf("parse category id: %w", err)
		}
		e.CategoryID = &cid
	}
	if receipt.Valid {
		rid, err := uuid.Parse(receipt.String)
		if err != nil {
			return core.Expense{}, fmt.Errorf("parse receipt id: %w", err)
		}
		e.ReceiptID = &rid
	}
	return e, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func uuidPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func nullableBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
