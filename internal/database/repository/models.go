package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents a transactions row.
type Transaction struct {
	ID                string
	TransactionDate   string
	Description       string
	AmountIn          decimal.Decimal
	AmountOut         decimal.Decimal
	Counterparty      *string
	CounterpartyID    *int64
	CategoryID        *int64
	SourceFile        string
	SourceFileHash    string
	NormalizationHash string
	Year              int
	Month             string
	MappingVersion    string
	LogicVersion      string
	CreatedAt         time.Time
}

// Counterparty represents a canonical counterparty entity.
type Counterparty struct {
	ID             int64
	Name           string
	NameNormalized string
	CreatedAt      time.Time
}

// Category represents a category row.
type Category struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Document represents an ingested source document.
type Document struct {
	ID           int64
	Filename     string
	FileHash     string
	DocumentType string
	Status       string
	UploadDate   time.Time
}

// ReportTemplate represents a saved report request.
type ReportTemplate struct {
	ID             int64
	Name           string
	DefinitionJSON string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}
