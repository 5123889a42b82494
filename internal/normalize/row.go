// Package normalize turns raw extracted rows into canonical, content-hashed
// transactions.
package normalize

import (
	"sort"

	"github.com/jask/extracta/internal/mapping"
)

// Keys rows carry once their headers have been resolved.
const (
	KeyDate        = "Date"
	KeyDescription = "Description"
	KeyAmount      = "Amount"
)

// RequiredColumns are the columns every row must carry; the first is the date column.
var RequiredColumns = []string{KeyDate, KeyDescription, KeyAmount}

// RawRow is one extracted row keyed by source column name.
type RawRow map[string]string

// Value is a row field that may be absent.
type Value struct {
	Text    string
	Present bool
}

// Resolved is a raw row viewed through its canonical keys.
type Resolved struct {
	Date        Value
	Description Value
	Amount      Value
}

func (r RawRow) value(key string) Value {
	v, ok := r[key]
	return Value{Text: v, Present: ok}
}

// Resolve exposes the canonical keys of r.
func (r RawRow) Resolve() Resolved {
	return Resolved{
		Date:        r.value(KeyDate),
		Description: r.value(KeyDescription),
		Amount:      r.value(KeyAmount),
	}
}

// Relabel renames resolved source headers to the canonical row keys. A single
// amount-bearing column becomes Amount whatever its resolved kind; rows with
// several amount columns keep their original headers. An empty resolution
// leaves rows untouched.
func Relabel(rows []RawRow, res mapping.Resolution) []RawRow {
	if len(res) == 0 {
		return rows
	}
	out := make([]RawRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, relabelRow(row, res))
	}
	return out
}

func relabelRow(row RawRow, res mapping.Resolution) RawRow {
	headers := make([]string, 0, len(row))
	for h := range row {
		headers = append(headers, h)
	}
	sort.Strings(headers)

	var amountCols []string
	for _, h := range headers {
		switch res[h] {
		case mapping.Amount, mapping.AmountIn, mapping.AmountOut:
			amountCols = append(amountCols, h)
		}
	}

	targets := make(map[string]string, len(headers))
	claimed := make(map[string]bool)
	claim := func(h, key string) {
		if claimed[key] {
			return
		}
		claimed[key] = true
		targets[h] = key
	}
	for _, h := range headers {
		switch res[h] {
		case mapping.TransactionDate:
			claim(h, KeyDate)
		case mapping.Description:
			claim(h, KeyDescription)
		}
	}
	if len(amountCols) == 1 {
		claim(amountCols[0], KeyAmount)
	}

	out := make(RawRow, len(row))
	for _, h := range headers {
		if key, ok := targets[h]; ok {
			out[key] = row[h]
		}
	}
	for _, h := range headers {
		if _, moved := targets[h]; moved {
			continue
		}
		if _, taken := out[h]; taken {
			continue
		}
		out[h] = row[h]
	}
	return out
}
