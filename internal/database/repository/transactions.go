package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
)

var transactionColumns = []string{
	"transaction_id",
	"transaction_date",
	"description",
	"amount_in_cents",
	"amount_out_cents",
	"counterparty",
	"counterparty_id",
	"category_id",
	"source_file",
	"source_file_hash",
	"normalization_hash",
	"year",
	"month",
	"mapping_version",
	"logic_version",
	"created_at",
}

// insertColumns excludes created_at, which the store stamps.
var insertColumns = transactionColumns[:len(transactionColumns)-1]

var insertTransactionSQL = "INSERT OR IGNORE INTO transactions (" + strings.Join(insertColumns, ", ") +
	") VALUES (" + strings.TrimSuffix(strings.Repeat("?, ", len(insertColumns)), ", ") + ")"

// TransactionFilters defines list filters. Zero values mean no filter.
type TransactionFilters struct {
	SourceFileHash string
	Month          string
	CategoryID     *int64
	CounterpartyID *int64
	Limit          uint64
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db DBTX
}

func NewTransactionRepo(db DBTX) *TransactionRepo { return &TransactionRepo{db: db} }

// BulkInsert persists txs in a single transaction and returns the number of
// newly inserted rows. Rows whose transaction_id already exists are ignored.
func (r *TransactionRepo) BulkInsert(ctx context.Context, txs []Transaction) (int, error) {
	if len(txs) == 0 {
		return 0, nil
	}
	inserted := 0
	err := atomically(ctx, r.db, func(db DBTX) error {
		stmt, err := db.PrepareContext(ctx, insertTransactionSQL)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, t := range txs {
			res, err := stmt.ExecContext(ctx,
				t.ID, t.TransactionDate, t.Description, toCents(t.AmountIn), toCents(t.AmountOut),
				t.Counterparty, t.CounterpartyID, t.CategoryID, t.SourceFile, t.SourceFileHash,
				t.NormalizationHash, t.Year, t.Month, t.MappingVersion, t.LogicVersion)
			if err != nil {
				return fmt.Errorf("insert transaction %s: %w", t.ID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			inserted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	q := sq.Select(transactionColumns...).From("transactions")
	if f.SourceFileHash != "" {
		q = q.Where(sq.Eq{"source_file_hash": f.SourceFileHash})
	}
	if f.Month != "" {
		q = q.Where(sq.Eq{"month": f.Month})
	}
	if f.CategoryID != nil {
		q = q.Where(sq.Eq{"category_id": *f.CategoryID})
	}
	if f.CounterpartyID != nil {
		q = q.Where(sq.Eq{"counterparty_id": *f.CounterpartyID})
	}
	q = q.OrderBy("transaction_date", "normalization_hash", "transaction_id")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	query := "SELECT " + strings.Join(transactionColumns, ", ") + " FROM transactions WHERE transaction_id = ?"
	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, err
}

func (r *TransactionRepo) CountBySourceFileHash(ctx context.Context, fileHash string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions WHERE source_file_hash = ?`, fileHash).Scan(&n)
	return n, err
}

func (r *TransactionRepo) DeleteBySourceFileHash(ctx context.Context, fileHash string) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE source_file_hash = ?`, fileHash)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// UpdateCounterparty sets the display name and entity reference of one transaction.
func (r *TransactionRepo) UpdateCounterparty(ctx context.Context, id, name string, counterpartyID int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET counterparty = ?, counterparty_id = ? WHERE transaction_id = ?`, name, counterpartyID, id)
	return err
}

// ReassignCounterparty moves every transaction of one counterparty to another
// and returns how many rows moved.
func (r *TransactionRepo) ReassignCounterparty(ctx context.Context, fromID, toID int64, name string) (int, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET counterparty_id = ?, counterparty = ? WHERE counterparty_id = ?`, toID, name, fromID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// RenameCounterparty refreshes the denormalized display name of one counterparty.
func (r *TransactionRepo) RenameCounterparty(ctx context.Context, counterpartyID int64, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transactions SET counterparty = ? WHERE counterparty_id = ?`, name, counterpartyID)
	return err
}

// UpdateCategory assigns a category; it reports false when the transaction does not exist.
func (r *TransactionRepo) UpdateCategory(ctx context.Context, id string, categoryID *int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET category_id = ? WHERE transaction_id = ?`, categoryID, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *TransactionRepo) CategoryInUse(ctx context.Context, categoryID int64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM transactions WHERE category_id = ? LIMIT 1`, categoryID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var in, out int64
	var counterparty sql.NullString
	var counterpartyID, categoryID sql.NullInt64
	if err := row.Scan(&t.ID, &t.TransactionDate, &t.Description, &in, &out, &counterparty, &counterpartyID,
		&categoryID, &t.SourceFile, &t.SourceFileHash, &t.NormalizationHash, &t.Year, &t.Month,
		&t.MappingVersion, &t.LogicVersion, &t.CreatedAt); err != nil {
		return Transaction{}, err
	}
	t.AmountIn = fromCents(in)
	t.AmountOut = fromCents(out)
	t.Counterparty = nullableString(counterparty)
	t.CounterpartyID = nullableInt64(counterpartyID)
	t.CategoryID = nullableInt64(categoryID)
	return t, nil
}

// toCents stores two-decimal money as integer minor units.
func toCents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// ListCounterpartyCandidates returns transactions lacking a usable
// counterparty: NULL, empty or "Unknown". With passThrough, rows whose
// counterparty merely echoes the description and have no entity reference
// are included too.
func (r *TransactionRepo) ListCounterpartyCandidates(ctx context.Context, passThrough bool) ([]Transaction, error) {
	cond := sq.Or{
		sq.Eq{"counterparty": nil},
		sq.Eq{"counterparty": ""},
		sq.Eq{"counterparty": "Unknown"},
	}
	if passThrough {
		cond = append(cond, sq.And{sq.Expr("counterparty = description"), sq.Eq{"counterparty_id": nil}})
	}
	query, args, err := sq.Select(transactionColumns...).From("transactions").
		Where(cond).OrderBy("normalization_hash", "transaction_id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
