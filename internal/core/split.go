package core

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SplitMode selects how an expense total divides across participants. The
// mode is always chosen explicitly by the caller, never inferred from which
// share fields happen to be populated.
type SplitMode string

const (
	SplitEqual      SplitMode = "equal"
	SplitPercentage SplitMode = "percentage"
	SplitExplicit   SplitMode = "explicit"
)

// PercentToleranceBP is how far a percentage split's sum may deviate from
// 100% and still be accepted (0.01 percentage points).
const PercentToleranceBP = 1

var (
	ErrInvalidSplit   = errors.New("invalid split")
	ErrNoParticipants = errors.New("no participants to split expense")
)

// SplitShare is one participant's requested share. Amount is read in
// explicit mode, PercentBP in percentage mode; equal mode uses only UserID.
type SplitShare struct {
	UserID    string
	Amount    Money
	PercentBP int64
}

func (m SplitMode) Valid() bool {
	switch m {
	case SplitEqual, SplitPercentage, SplitExplicit:
		return true
	}
	return false
}

// ComputeSplits divides total across shares according to mode and returns a
// fully reconciled split set: amounts sum to total exactly and percentages
// sum to exactly 10000 bp. On any validation failure it returns ErrInvalidSplit
// (possibly wrapped) and no splits.
//
// Rounding remainders are deterministic: equal mode hands one extra cent to
// the first participants in caller order; percentage mode assigns the whole
// remainder to the payer's share (or the first share when the payer holds
// none), so the payer absorbs the rounding by convention.
func ComputeSplits(total Money, mode SplitMode, shares []SplitShare, payerID string) ([]ExpenseSplit, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSplit, ErrNoParticipants)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("%w: total: %s", ErrInvalidSplit, err)
	}
	for _, sh := range shares {
		if sh.UserID == "" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSplit, ErrEmptyUser)
		}
	}

	switch mode {
	case SplitEqual:
		return splitEqual(total, shares)
	case SplitPercentage:
		return splitPercentage(total, shares, payerID)
	case SplitExplicit:
		return splitExplicit(total, shares)
	default:
		return nil, fmt.Errorf("%w: unsupported split mode %q", ErrInvalidSplit, mode)
	}
}

func splitEqual(total Money, shares []SplitShare) ([]ExpenseSplit, error) {
	n := int64(len(shares))
	base := total.Cents / n
	remainder := total.Cents % n

	baseBP := int64(10000) / n
	bpRemainder := int64(10000) % n

	splits := make([]ExpenseSplit, 0, n)
	for i, sh := range shares {
		cents := base
		if int64(i) < remainder {
			cents++
		}
		bp := baseBP
		if int64(i) < bpRemainder {
			bp++
		}
		splits = append(splits, ExpenseSplit{
			ID:         uuid.New(),
			UserID:     sh.UserID,
			AmountOwed: Money{Cents: cents, Currency: total.Currency},
			PercentBP:  bp,
		})
	}
	return splits, nil
}

func splitPercentage(total Money, shares []SplitShare, payerID string) ([]ExpenseSplit, error) {
	var sumBP int64
	for _, sh := range shares {
		if sh.PercentBP < 0 || sh.PercentBP > 10000 {
			return nil, fmt.Errorf("%w: percentage %s out of range", ErrInvalidSplit, FormatPercent(sh.PercentBP))
		}
		sumBP += sh.PercentBP
	}
	diff := sumBP - 10000
	if diff < -PercentToleranceBP || diff > PercentToleranceBP {
		return nil, fmt.Errorf("%w: percentages sum to %s, want 100", ErrInvalidSplit, FormatPercent(sumBP))
	}

	splits := make([]ExpenseSplit, 0, len(shares))
	var sumCents int64
	adjustIdx := 0
	for i, sh := range shares {
		amount := total.MultiplyByPercent(sh.PercentBP)
		sumCents += amount.Cents
		if sh.UserID == payerID {
			adjustIdx = i
		}
		splits = append(splits, ExpenseSplit{
			ID:         uuid.New(),
			UserID:     sh.UserID,
			AmountOwed: amount,
			PercentBP:  sh.PercentBP,
		})
	}

	// Per-share rounding can miss the total by a few cents; the designated
	// share absorbs the difference so the reconciliation invariant holds.
	splits[adjustIdx].AmountOwed.Cents += total.Cents - sumCents
	if splits[adjustIdx].AmountOwed.IsNegative() {
		return nil, fmt.Errorf("%w: rounding adjustment made a share negative", ErrInvalidSplit)
	}
	// Percentages likewise reconcile to exactly 100%.
	splits[adjustIdx].PercentBP += 10000 - sumBP
	return splits, nil
}

func splitExplicit(total Money, shares []SplitShare) ([]ExpenseSplit, error) {
	var sumCents int64
	for _, sh := range shares {
		if sh.Amount.Currency != total.Currency {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSplit, ErrCurrencyMismatch)
		}
		if sh.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: negative share for user %s", ErrInvalidSplit, sh.UserID)
		}
		sumCents += sh.Amount.Cents
	}
	if sumCents != total.Cents {
		return nil, fmt.Errorf("%w: shares sum to %s, total is %s",
			ErrInvalidSplit, Money{Cents: sumCents, Currency: total.Currency}.Decimal(), total.Decimal())
	}

	splits := make([]ExpenseSplit, 0, len(shares))
	var sumBP int64
	lastNonZero := -1
	for i, sh := range shares {
		var bp int64
		if total.Cents > 0 {
			// Derived percentage, half-up at the basis point.
			bp = (sh.Amount.Cents*10000 + total.Cents/2) / total.Cents
		}
		sumBP += bp
		if bp > 0 {
			lastNonZero = i
		}
		splits = append(splits, ExpenseSplit{
			ID:         uuid.New(),
			UserID:     sh.UserID,
			AmountOwed: sh.Amount,
			PercentBP:  bp,
		})
	}
	if lastNonZero >= 0 {
		splits[lastNonZero].PercentBP += 10000 - sumBP
	}
	return splits, nil
}

// BindSplits stamps the owning expense id onto pending splits.
func BindSplits(expenseID uuid.UUID, splits []ExpenseSplit) {
	for i := range splits {
		splits[i].ExpenseID = expenseID
	}
}
