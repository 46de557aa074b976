package core

import "testing"

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding on the third decimal
		{" 2.50 ", 250, true},
		{"-1", -100, true},
		{"0", 0, true},
		{"9223372036854.77", MaxCents, true}, // largest accepted magnitude
		{"9223372036854.78", 0, false},
		{"9999999999999999", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"1.", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in, "USD")
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
			if got.Currency != "USD" {
				t.Fatalf("%q expected currency USD, got %q", tc.in, got.Currency)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyAddSub(t *testing.T) {
	a := MustMoney("10.00", "USD")
	b := MustMoney("2.50", "USD")

	sum, err := a.Add(b)
	if err != nil || sum.Cents != 1250 {
		t.Fatalf("add: got %v (err=%v)", sum, err)
	}
	diff, err := a.Sub(b)
	if err != nil || diff.Cents != 750 {
		t.Fatalf("sub: got %v (err=%v)", diff, err)
	}

	if _, err := a.Add(MustMoney("1.00", "EUR")); err == nil {
		t.Fatal("expected currency mismatch error")
	}
}

func TestMultiplyByPercent(t *testing.T) {
	cases := []struct {
		cents int64
		bp    int64
		want  int64
	}{
		{5000, 6000, 3000},  // 60% of 50.00
		{5000, 4000, 2000},  // 40% of 50.00
		{10000, 3333, 3333}, // 33.33% of 100.00
		{100, 5000, 50},     // 50% of 1.00
		{25, 5000, 12},      // 0.125 rounds half-even down to 0.12
		{75, 5000, 38},      // 0.375 rounds half-even up to 0.38
		{-100, 2500, -25},
		{MaxCents, 10000, MaxCents}, // 100% at the parse bound stays exact
	}
	for _, tc := range cases {
		got := Money{Cents: tc.cents, Currency: "USD"}.MultiplyByPercent(tc.bp)
		if got.Cents != tc.want {
			t.Fatalf("%d cents * %d bp: expected %d, got %d", tc.cents, tc.bp, tc.want, got.Cents)
		}
	}
}

func TestMoneyDecimal(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{100, "1.00"},
		{5, "0.05"},
		{0, "0.00"},
		{-1234, "-12.34"},
	}
	for _, tc := range cases {
		if got := (Money{Cents: tc.cents}).Decimal(); got != tc.want {
			t.Fatalf("%d cents: expected %q, got %q", tc.cents, tc.want, got)
		}
	}
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"100", 10000, true},
		{"33.33", 3333, true},
		{"0", 0, true},
		{"100.01", 0, false},
		{"-1", 0, false},
		{"pct", 0, false},
	}
	for _, tc := range cases {
		got, err := ParsePercent(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}
