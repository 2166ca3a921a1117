package market

import (
	"math/big"
	"testing"
)

func TestFormatUnits(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"0", "0"},
		{"1000000000000000000", "1"},
		{"1500000000000000000", "1.5"},
		{"10000000000000000", "0.01"},
		{"1", "0.000000000000000001"},
		{"13000000000000000000", "13"},
		{"-2500000000000000000", "-2.5"},
	}
	for _, tc := range cases {
		amount, ok := new(big.Int).SetString(tc.amount, 10)
		if !ok {
			t.Fatalf("bad fixture %q", tc.amount)
		}
		if got := FormatUnits(amount, BondDecimals); got != tc.want {
			t.Fatalf("FormatUnits(%s) = %q, want %q", tc.amount, got, tc.want)
		}
	}
}

func TestFormatUnitsNil(t *testing.T) {
	if got := FormatUnits(nil, BondDecimals); got != "0" {
		t.Fatalf("FormatUnits(nil) = %q, want 0", got)
	}
}

func TestParseUnitsRoundTrip(t *testing.T) {
	for _, value := range []string{"1", "1.5", "0.01", "0.000000000000000001", "13", "-2.5"} {
		amount, err := ParseUnits(value, BondDecimals)
		if err != nil {
			t.Fatalf("parse %q: %v", value, err)
		}
		if got := FormatUnits(amount, BondDecimals); got != value {
			t.Fatalf("round trip %q -> %q", value, got)
		}
	}
}

func TestParseUnitsRejectsExcessPrecision(t *testing.T) {
	if _, err := ParseUnits("1.0000000000000000001", BondDecimals); err == nil {
		t.Fatalf("expected error for 19 fractional digits")
	}
}

func TestParseUnitsRejectsGarbage(t *testing.T) {
	for _, value := range []string{"", "  ", "abc", "1.2.3"} {
		if _, err := ParseUnits(value, BondDecimals); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}
