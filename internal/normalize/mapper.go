package normalize

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the canonical record produced by the engine.
type Transaction struct {
	ID                string
	TransactionDate   string
	Description       string
	AmountIn          decimal.Decimal
	AmountOut         decimal.Decimal
	Counterparty      string
	SourceFile        string
	SourceFileHash    string
	Year              int
	Month             string
	MappingVersion    string
	LogicVersion      string
	NormalizationHash string
}

// Source identifies the document rows came from.
type Source struct {
	File string
	Hash string
}

// MapRow builds a canonical transaction from a validated row. It reports false
// when the row lacks a date, description or single signed amount, or when the
// amount cannot be read.
func MapRow(row RawRow, src Source) (Transaction, bool) {
	r := row.Resolve()
	if !r.Date.Present || !r.Description.Present || !r.Amount.Present {
		return Transaction{}, false
	}
	amt, err := ParseAmount(r.Amount.Text)
	if err != nil {
		return Transaction{}, false
	}
	amt = amt.Round(2)

	t := Transaction{
		ID:              uuid.NewString(),
		TransactionDate: r.Date.Text,
		Description:     r.Description.Text,
		AmountIn:        decimal.Zero,
		AmountOut:       decimal.Zero,
		Counterparty:    r.Description.Text,
		SourceFile:      src.File,
		SourceFileHash:  src.Hash,
	}
	switch amt.Sign() {
	case -1:
		t.AmountOut = amt.Abs()
	case 1:
		t.AmountIn = amt
	}
	return t, true
}
