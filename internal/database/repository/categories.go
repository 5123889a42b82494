package repository

import (
	"context"
	"database/sql"
	"errors"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// Create inserts a category and returns its id.
func (r *CategoryRepo) Create(ctx context.Context, name string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO categories(name) VALUES (?)`, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// EnsureNamed inserts the category if no category with that name exists.
func (r *CategoryRepo) EnsureNamed(ctx context.Context, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO categories(name) VALUES (?)`, name)
	return err
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (*Category, error) {
	return r.getOne(ctx, `SELECT category_id, name, created_at FROM categories WHERE category_id = ?`, id)
}

func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*Category, error) {
	return r.getOne(ctx, `SELECT category_id, name, created_at FROM categories WHERE name = ?`, name)
}

func (r *CategoryRepo) getOne(ctx context.Context, query string, arg any) (*Category, error) {
	var c Category
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT category_id, name, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Rename reports false when the category does not exist.
func (r *CategoryRepo) Rename(ctx context.Context, id int64, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE categories SET name = ? WHERE category_id = ?`, name, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE category_id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
