package database

import (
	"context"
	"database/sql"
	"fmt"
)

var defaultCategories = []string{
	"Groceries",
	"Dining",
	"Transport",
	"Utilities",
	"Rent",
	"Income",
	"Transfers",
	"Other",
}

// SeedDefaults inserts the baseline categories. Existing names are left alone,
// so it is safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	return WithTx(ctx, db, func(tx *sql.Tx) error {
		for _, name := range defaultCategories {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO categories(name) VALUES (?)`, name); err != nil {
				return fmt.Errorf("database: seed category %s: %w", name, err)
			}
		}
		return nil
	})
}
