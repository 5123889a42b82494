package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/logger"
	"github.com/jask/extracta/internal/observability"
)

// resetOrder lists data tables children first so foreign keys never block a delete.
var resetOrder = []string{
	"transactions",
	"counterparties",
	"documents",
	"categories",
	"report_templates",
}

// MaintenanceService wipes stored data for `extracta reset`.
type MaintenanceService struct {
	DB   *sql.DB
	Sink observability.Sink
}

// Reset deletes every row from the data tables in one transaction and returns
// the number removed per table. The schema and its migration version survive.
func (s *MaintenanceService) Reset(ctx context.Context) (map[string]int, error) {
	if s.DB == nil {
		return nil, errors.New("maintenance: db not configured")
	}
	timer := observability.Start(s.Sink, "reset")
	removed := make(map[string]int, len(resetOrder))
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, table := range resetOrder {
			res, err := tx.ExecContext(ctx, "DELETE FROM "+table)
			if err != nil {
				return fmt.Errorf("reset %s: %w", table, err)
			}
			n, _ := res.RowsAffected()
			removed[table] = int(n)
		}
		return nil
	})
	if err != nil {
		timer.End(observability.Record{Status: observability.StatusError, ErrorCount: 1, Fields: map[string]any{"error": err.Error()}})
		return nil, err
	}

	total := 0
	for _, n := range removed {
		total += n
	}
	timer.End(observability.Record{Status: observability.StatusSuccess, InCount: total})

	if _, err := s.DB.ExecContext(ctx, "VACUUM"); err != nil {
		log := logger.FromContext(ctx)
		log.Warn().Err(err).Msg("vacuum after reset failed")
	}
	return removed, nil
}
