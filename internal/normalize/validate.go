package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayouts are tried in order (ISO, day/month/year, month/day/year); the
// first successful parse wins. Day and month may omit the leading zero.
var DateLayouts = []string{"2006-01-02", "2/1/2006", "1/2/2006"}

const AnomalyZeroAmount = "zero_amount"

// Anomaly flags a row that was kept despite a data quality issue.
type Anomaly struct {
	Type  string
	Index int
	Row   RawRow
}

// NormalizeDate re-emits s as an ISO date.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range DateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnparseableDate, s)
}

// Validate checks required columns, normalizes the date column (the first
// required column) and flags zero amounts. Every input row is returned.
func Validate(rows []RawRow, required []string) ([]RawRow, []Anomaly, error) {
	if len(rows) == 0 {
		return nil, nil, ErrMissingInput
	}
	cleaned := make([]RawRow, 0, len(rows))
	var anomalies []Anomaly
	for i, r := range rows {
		for _, col := range required {
			if _, ok := r[col]; !ok {
				return nil, nil, fmt.Errorf("%w: row %d lacks %q", ErrMissingColumn, i, col)
			}
		}
		row := make(RawRow, len(r))
		for k, v := range r {
			row[k] = v
		}
		if len(required) > 0 {
			iso, err := NormalizeDate(row[required[0]])
			if err != nil {
				return nil, nil, fmt.Errorf("row %d: %w", i, err)
			}
			row[required[0]] = iso
		}
		if amt, ok := row[KeyAmount]; ok {
			if d, err := ParseAmount(amt); err == nil && d.IsZero() {
				anomalies = append(anomalies, Anomaly{Type: AnomalyZeroAmount, Index: i, Row: row})
			}
		}
		cleaned = append(cleaned, row)
	}
	return cleaned, anomalies, nil
}

// ParseAmount reads a signed amount, tolerating thousands separators,
// surrounding space and a leading currency symbol.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimLeft(s, "€$£")
	if neg {
		s = "-" + s
	}
	return decimal.NewFromString(s)
}
