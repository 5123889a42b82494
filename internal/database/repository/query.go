package repository

import (
	"context"
)

// QueryResult holds rows of an arbitrary read query keyed by column name.
type QueryResult struct {
	Columns []string
	Rows    []map[string]any
}

// Query runs a parameterized read-only statement and returns named columns.
// []byte values are returned as strings.
func Query(ctx context.Context, db DBTX, query string, args ...any) (QueryResult, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return QueryResult{}, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return QueryResult{}, err
	}
	res := QueryResult{Columns: cols}
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return QueryResult{}, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
				continue
			}
			row[c] = vals[i]
		}
		res.Rows = append(res.Rows, row)
	}
	return res, rows.Err()
}
