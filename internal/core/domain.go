package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	AssetCash       AssetType = "cash"
	AssetInvestment AssetType = "investment"
	AssetProperty   AssetType = "property"
	AssetCrypto     AssetType = "crypto"
	AssetOther      AssetType = "other"
)

type (
	AssetType string

	// Expense is a single ledger entry. Immutable once created except for
	// category and receipt linkage; deletion cascades to its splits.
	Expense struct {
		ID          uuid.UUID
		Description string
		Amount      Money
		Date        time.Time
		PayerID     string
		CategoryID  *uuid.UUID
		ReceiptID   *uuid.UUID
		CreatedAt   time.Time
	}

	// ExpenseSplit is one participant's share of an expense. Splits belong to
	// exactly one expense and live and die with it.
	ExpenseSplit struct {
		ID         uuid.UUID
		ExpenseID  uuid.UUID
		UserID     string
		AmountOwed Money
		// PercentBP is the share in basis points (1% = 100 bp).
		PercentBP int64
	}

	// Asset is a user holding with a point-in-time value.
	Asset struct {
		ID          uuid.UUID
		UserID      string
		Name        string
		Value       Money
		Type        AssetType
		LastUpdated time.Time
	}

	// NetWorthEntry is one append-only sample of a user's net worth.
	// Entries are never mutated after creation.
	NetWorthEntry struct {
		ID         uuid.UUID
		UserID     string
		TotalValue Money
		Date       time.Time
	}

	UserProfile struct {
		UserID          string
		MonthlyIncome   Money
		Currency        string
		ThemePreference string
	}

	Category struct {
		ID    uuid.UUID
		Name  string
		Color string
		Icon  string
	}

	// Receipt stores the raw extraction result for an uploaded image, plus an
	// optional back-reference to the expense it was applied to.
	Receipt struct {
		ID         uuid.UUID
		URL        string
		ScanData   []byte
		UploadedBy string
		ExpenseID  *uuid.UUID
		Date       time.Time
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyUser        = errors.New("empty user id")
	ErrEmptyCurrency    = errors.New("empty currency")
	ErrInvalidAssetType = errors.New("invalid asset type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrTooLong          = errors.New("value too long")
)

func (t AssetType) Valid() bool {
	switch t {
	case AssetCash, AssetInvestment, AssetProperty, AssetCrypto, AssetOther:
		return true
	}
	return false
}

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return fmt.Errorf("%w: description exceeds 200 characters", ErrTooLong)
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(e.PayerID) == "" {
		return ErrEmptyUser
	}
	return nil
}

func (a Asset) Validate() error {
	if strings.TrimSpace(a.UserID) == "" {
		return ErrEmptyUser
	}
	if len(strings.TrimSpace(a.Name)) == 0 {
		return ErrEmptyName
	}
	if len(a.Name) > 200 {
		return fmt.Errorf("%w: name exceeds 200 characters", ErrTooLong)
	}
	if a.Value.IsNegative() {
		return ErrInvalidAmount
	}
	if !a.Type.Valid() {
		return ErrInvalidAssetType
	}
	return nil
}

func (p UserProfile) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrEmptyUser
	}
	if p.MonthlyIncome.IsNegative() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(p.Currency) == "" {
		return ErrEmptyCurrency
	}
	return nil
}
