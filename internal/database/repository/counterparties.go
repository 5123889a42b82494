package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// CounterpartyRepo handles counterparty entities.
type CounterpartyRepo struct {
	db DBTX
}

func NewCounterpartyRepo(db DBTX) *CounterpartyRepo { return &CounterpartyRepo{db: db} }

// NormalizeName is the uniqueness key for counterparty names.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// GetOrCreate returns the id of the counterparty whose normalized name matches
// name, creating it when absent.
func (r *CounterpartyRepo) GetOrCreate(ctx context.Context, name string) (int64, error) {
	norm := NormalizeName(name)
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO counterparties(name, name_normalized) VALUES (?, ?)`, name, norm); err != nil {
		return 0, err
	}
	var id int64
	err := r.db.QueryRowContext(ctx, `SELECT counterparty_id FROM counterparties WHERE name_normalized = ?`, norm).Scan(&id)
	return id, err
}

func (r *CounterpartyRepo) Get(ctx context.Context, id int64) (*Counterparty, error) {
	var c Counterparty
	err := r.db.QueryRowContext(ctx, `SELECT counterparty_id, name, name_normalized, created_at FROM counterparties WHERE counterparty_id = ?`, id).
		Scan(&c.ID, &c.Name, &c.NameNormalized, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByNormalized returns the counterparty with the given normalized name, or nil.
func (r *CounterpartyRepo) FindByNormalized(ctx context.Context, norm string) (*Counterparty, error) {
	var c Counterparty
	err := r.db.QueryRowContext(ctx, `SELECT counterparty_id, name, name_normalized, created_at FROM counterparties WHERE name_normalized = ?`, norm).
		Scan(&c.ID, &c.Name, &c.NameNormalized, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CounterpartyUsage is a counterparty with the number of transactions pointing at it.
type CounterpartyUsage struct {
	Counterparty
	TransactionCount int
}

func (r *CounterpartyRepo) List(ctx context.Context) ([]CounterpartyUsage, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT c.counterparty_id, c.name, c.name_normalized, c.created_at, COUNT(t.transaction_id)
	FROM counterparties c
	LEFT JOIN transactions t ON t.counterparty_id = c.counterparty_id
	GROUP BY c.counterparty_id
	ORDER BY c.name_normalized`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CounterpartyUsage
	for rows.Next() {
		var u CounterpartyUsage
		if err := rows.Scan(&u.ID, &u.Name, &u.NameNormalized, &u.CreatedAt, &u.TransactionCount); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *CounterpartyRepo) Rename(ctx context.Context, id int64, name string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE counterparties SET name = ?, name_normalized = ? WHERE counterparty_id = ?`, name, NormalizeName(name), id)
	return err
}

func (r *CounterpartyRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM counterparties WHERE counterparty_id = ?`, id)
	return err
}
