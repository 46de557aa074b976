package core

import (
	"errors"
	"testing"
)

func shareIDs(ids ...string) []SplitShare {
	shares := make([]SplitShare, 0, len(ids))
	for _, id := range ids {
		shares = append(shares, SplitShare{UserID: id})
	}
	return shares
}

func sumCents(splits []ExpenseSplit) int64 {
	var sum int64
	for _, s := range splits {
		sum += s.AmountOwed.Cents
	}
	return sum
}

func sumBP(splits []ExpenseSplit) int64 {
	var sum int64
	for _, s := range splits {
		sum += s.PercentBP
	}
	return sum
}

func TestComputeSplitsEqual(t *testing.T) {
	total := MustMoney("100.00", "USD")
	splits, err := ComputeSplits(total, SplitEqual, shareIDs("a", "b", "c"), "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(splits) != 3 {
		t.Fatalf("expected 3 splits, got %d", len(splits))
	}
	want := []int64{3334, 3333, 3333}
	for i, w := range want {
		if splits[i].AmountOwed.Cents != w {
			t.Fatalf("split %d: expected %d cents, got %d", i, w, splits[i].AmountOwed.Cents)
		}
	}
	if sumCents(splits) != total.Cents {
		t.Fatalf("splits sum to %d, want %d", sumCents(splits), total.Cents)
	}
	if sumBP(splits) != 10000 {
		t.Fatalf("percentages sum to %d bp, want 10000", sumBP(splits))
	}
}

func TestComputeSplitsEqualProperties(t *testing.T) {
	// For any participant count, the sum is exact and no two shares differ
	// by more than one minor unit.
	total := MustMoney("7.31", "EUR")
	for n := 1; n <= 11; n++ {
		ids := make([]string, n)
		for i := range ids {
			ids[i] = string(rune('a' + i))
		}
		splits, err := ComputeSplits(total, SplitEqual, shareIDs(ids...), ids[0])
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if sumCents(splits) != total.Cents {
			t.Fatalf("n=%d: sum %d != total %d", n, sumCents(splits), total.Cents)
		}
		minC, maxC := splits[0].AmountOwed.Cents, splits[0].AmountOwed.Cents
		for _, s := range splits {
			if s.AmountOwed.Cents < minC {
				minC = s.AmountOwed.Cents
			}
			if s.AmountOwed.Cents > maxC {
				maxC = s.AmountOwed.Cents
			}
		}
		if maxC-minC > 1 {
			t.Fatalf("n=%d: max-min spread %d exceeds one minor unit", n, maxC-minC)
		}
	}
}

func TestComputeSplitsPercentage(t *testing.T) {
	total := MustMoney("50.00", "USD")
	shares := []SplitShare{
		{UserID: "payer", PercentBP: 6000},
		{UserID: "friend", PercentBP: 4000},
	}
	splits, err := ComputeSplits(total, SplitPercentage, shares, "payer")
	if err != nil {
		t.Fatal(err)
	}
	if splits[0].AmountOwed.Cents != 3000 || splits[1].AmountOwed.Cents != 2000 {
		t.Fatalf("expected 30.00/20.00, got %s/%s",
			splits[0].AmountOwed.Decimal(), splits[1].AmountOwed.Decimal())
	}
	if sumCents(splits) != total.Cents {
		t.Fatalf("splits sum to %d, want %d", sumCents(splits), total.Cents)
	}
}

func TestComputeSplitsPercentageRemainderToPayer(t *testing.T) {
	// Per-share rounding on 100.01 loses one cent; it must land on the payer.
	total := MustMoney("100.01", "USD")
	shares := []SplitShare{
		{UserID: "a", PercentBP: 3333},
		{UserID: "payer", PercentBP: 3333},
		{UserID: "c", PercentBP: 3334},
	}
	splits, err := ComputeSplits(total, SplitPercentage, shares, "payer")
	if err != nil {
		t.Fatal(err)
	}
	if sumCents(splits) != total.Cents {
		t.Fatalf("splits sum to %d, want %d", sumCents(splits), total.Cents)
	}
	if sumBP(splits) != 10000 {
		t.Fatalf("percentages sum to %d bp, want 10000", sumBP(splits))
	}
	// The cent correction lands on the payer's share, not the others.
	if splits[0].AmountOwed.Cents != 3333 || splits[2].AmountOwed.Cents != 3334 {
		t.Fatalf("non-payer shares changed: %d/%d",
			splits[0].AmountOwed.Cents, splits[2].AmountOwed.Cents)
	}
	if splits[1].AmountOwed.Cents != 3334 {
		t.Fatalf("payer share: expected 3334, got %d", splits[1].AmountOwed.Cents)
	}
}

func TestComputeSplitsPercentageTolerance(t *testing.T) {
	total := MustMoney("50.00", "USD")
	cases := []struct {
		name string
		bps  []int64
		ok   bool
	}{
		{"exact", []int64{5000, 5000}, true},
		{"within tolerance", []int64{5000, 5001}, true},
		{"short", []int64{5000, 4998}, false},
		{"over", []int64{5000, 5002}, false},
		{"way off", []int64{2000, 2000}, false},
	}
	for _, tc := range cases {
		shares := make([]SplitShare, len(tc.bps))
		for i, bp := range tc.bps {
			shares[i] = SplitShare{UserID: string(rune('a' + i)), PercentBP: bp}
		}
		_, err := ComputeSplits(total, SplitPercentage, shares, "a")
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.ok {
			if !errors.Is(err, ErrInvalidSplit) {
				t.Fatalf("%s: expected ErrInvalidSplit, got %v", tc.name, err)
			}
		}
	}
}

func TestComputeSplitsExplicit(t *testing.T) {
	total := MustMoney("30.00", "USD")
	shares := []SplitShare{
		{UserID: "a", Amount: MustMoney("10.00", "USD")},
		{UserID: "b", Amount: MustMoney("20.00", "USD")},
	}
	splits, err := ComputeSplits(total, SplitExplicit, shares, "a")
	if err != nil {
		t.Fatal(err)
	}
	if sumCents(splits) != total.Cents {
		t.Fatalf("splits sum to %d, want %d", sumCents(splits), total.Cents)
	}
	if sumBP(splits) != 10000 {
		t.Fatalf("percentages sum to %d bp, want 10000", sumBP(splits))
	}
}

func TestComputeSplitsExplicitMismatch(t *testing.T) {
	total := MustMoney("30.00", "USD")
	shares := []SplitShare{
		{UserID: "a", Amount: MustMoney("10.00", "USD")},
		{UserID: "b", Amount: MustMoney("19.99", "USD")},
	}
	_, err := ComputeSplits(total, SplitExplicit, shares, "a")
	if !errors.Is(err, ErrInvalidSplit) {
		t.Fatalf("expected ErrInvalidSplit, got %v", err)
	}
}

func TestComputeSplitsExplicitWrongCurrency(t *testing.T) {
	total := MustMoney("30.00", "USD")
	shares := []SplitShare{
		{UserID: "a", Amount: MustMoney("30.00", "EUR")},
	}
	_, err := ComputeSplits(total, SplitExplicit, shares, "a")
	if !errors.Is(err, ErrInvalidSplit) {
		t.Fatalf("expected ErrInvalidSplit, got %v", err)
	}
}

func TestComputeSplitsRejectsBadInput(t *testing.T) {
	total := MustMoney("10.00", "USD")
	if _, err := ComputeSplits(total, SplitEqual, nil, "a"); !errors.Is(err, ErrInvalidSplit) {
		t.Fatalf("no participants: expected ErrInvalidSplit, got %v", err)
	}
	if _, err := ComputeSplits(total, SplitMode("half"), shareIDs("a"), "a"); !errors.Is(err, ErrInvalidSplit) {
		t.Fatalf("bad mode: expected ErrInvalidSplit, got %v", err)
	}
	if _, err := ComputeSplits(Money{Cents: 0, Currency: "USD"}, SplitEqual, shareIDs("a"), "a"); !errors.Is(err, ErrInvalidSplit) {
		t.Fatalf("zero total: expected ErrInvalidSplit, got %v", err)
	}
	if _, err := ComputeSplits(total, SplitEqual, shareIDs("a", ""), "a"); !errors.Is(err, ErrInvalidSplit) {
		t.Fatalf("empty user: expected ErrInvalidSplit, got %v", err)
	}
}
