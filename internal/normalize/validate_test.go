package normalize

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-15", "2025-01-15"},
		{"15/01/2025", "2025-01-15"},
		{"01/16/2025", "2025-01-16"},
		{" 3/2/2026 ", "2026-02-03"},
	}
	for _, tt := range tests {
		got, err := NormalizeDate(tt.in)
		if err != nil {
			t.Fatalf("NormalizeDate(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := NormalizeDate("Jan 15"); !errors.Is(err, ErrUnparseableDate) {
		t.Errorf("expected ErrUnparseableDate, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	if _, _, err := Validate(nil, RequiredColumns); !errors.Is(err, ErrMissingInput) {
		t.Fatalf("expected ErrMissingInput, got %v", err)
	}

	_, _, err := Validate([]RawRow{{"Date": "2025-01-01", "Description": "x"}}, RequiredColumns)
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("expected ErrMissingColumn, got %v", err)
	}

	rows := []RawRow{
		{"Date": "15/01/2025", "Description": "a", "Amount": "0.00"},
		{"Date": "2025-01-16", "Description": "b", "Amount": "-1"},
	}
	cleaned, anomalies, err := Validate(rows, RequiredColumns)
	if err != nil {
		t.Fatal(err)
	}
	if len(cleaned) != len(rows) {
		t.Fatalf("rows dropped: got %d want %d", len(cleaned), len(rows))
	}
	if cleaned[0]["Date"] != "2025-01-15" {
		t.Errorf("date not normalized: %q", cleaned[0]["Date"])
	}
	if rows[0]["Date"] != "15/01/2025" {
		t.Errorf("input row mutated")
	}
	if len(anomalies) != 1 || anomalies[0].Type != AnomalyZeroAmount || anomalies[0].Index != 0 {
		t.Errorf("unexpected anomalies: %+v", anomalies)
	}
}

func TestParseAmount(t *testing.T) {
	tests := map[string]string{
		"-5.50":    "-5.5",
		"1,234.56": "1234.56",
		" €12 ":    "12",
		"-$3.10":   "-3.1",
		"£0":       "0",
	}
	for in, want := range tests {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", in, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ParseAmount(%q) = %s, want %s", in, got, want)
		}
	}
	if _, err := ParseAmount("n/a"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestMapRow(t *testing.T) {
	src := Source{File: "s.pdf", Hash: "h"}

	out, ok := MapRow(RawRow{"Date": "2025-01-15", "Description": "Coffee Shop", "Amount": "-5.50"}, src)
	if !ok {
		t.Fatal("expected mapped row")
	}
	if !out.AmountOut.Equal(decimal.RequireFromString("5.50")) || !out.AmountIn.IsZero() {
		t.Errorf("split wrong: in=%s out=%s", out.AmountIn, out.AmountOut)
	}
	if out.Counterparty != "Coffee Shop" || out.ID == "" {
		t.Errorf("unexpected transaction %+v", out)
	}

	in, _ := MapRow(RawRow{"Date": "2025-01-15", "Description": "Salary", "Amount": "100"}, src)
	if !in.AmountIn.Equal(decimal.NewFromInt(100)) || !in.AmountOut.IsZero() {
		t.Errorf("positive split wrong: in=%s out=%s", in.AmountIn, in.AmountOut)
	}

	again, _ := MapRow(RawRow{"Date": "2025-01-15", "Description": "Coffee Shop", "Amount": "-5.50"}, src)
	if again.ID == out.ID {
		t.Error("ids must be fresh on every call")
	}

	skips := []RawRow{
		{"Description": "no date", "Amount": "1"},
		{"Date": "2025-01-15", "Amount": "1"},
		{"Date": "2025-01-15", "Description": "credit/debit", "Credit": "1", "Debit": "0"},
		{"Date": "2025-01-15", "Description": "bad", "Amount": "abc"},
	}
	for _, r := range skips {
		if _, ok := MapRow(r, src); ok {
			t.Errorf("expected no-match for %v", r)
		}
	}
}
