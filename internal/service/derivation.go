package service

import (
	"context"
	"database/sql"

	"github.com/jask/extracta/internal/counterparty"
	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/observability"
)

// DerivationStats summarizes one derivation run.
type DerivationStats struct {
	Scanned  int
	Assigned int
	Skipped  int
}

// DerivationService backfills counterparties from descriptions.
type DerivationService struct {
	DB   *sql.DB
	Sink observability.Sink
	// PassThrough also refines rows whose counterparty still echoes the
	// description and has no counterparty entity.
	PassThrough bool
}

// Derive assigns counterparties to every eligible transaction in one
// transaction. Rows that already carry a usable name are left alone, so a
// second run assigns nothing.
func (s *DerivationService) Derive(ctx context.Context) (DerivationStats, error) {
	sink := observability.OrNop(s.Sink)
	timer := observability.Start(sink, "counterparty_derivation")
	var stats DerivationStats

	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		txs := repository.NewTransactionRepo(tx)
		cps := repository.NewCounterpartyRepo(tx)

		total, err := txs.Count(ctx)
		if err != nil {
			return err
		}
		stats.Scanned = total
		candidates, err := txs.ListCounterpartyCandidates(ctx, s.PassThrough)
		if err != nil {
			return err
		}
		for _, t := range candidates {
			name := counterparty.ExtractName(t.Description)
			if name == counterparty.Unknown {
				sink.Emit(observability.Record{
					Stage:  "counterparty_autoderive_fail",
					Status: observability.StatusSkipped,
					Fields: map[string]any{"transaction_id": t.ID, "reason": "heuristic_unknown"},
				})
				continue
			}
			if t.Counterparty != nil && *t.Counterparty == name && t.CounterpartyID != nil {
				continue
			}
			id, err := cps.GetOrCreate(ctx, name)
			if err != nil {
				return err
			}
			if err := txs.UpdateCounterparty(ctx, t.ID, name, id); err != nil {
				return err
			}
			stats.Assigned++
		}
		return nil
	})
	if err != nil {
		timer.End(observability.Record{Status: observability.StatusError, ErrorCount: 1, Fields: map[string]any{"error": err.Error()}})
		return DerivationStats{}, err
	}
	stats.Skipped = stats.Scanned - stats.Assigned
	timer.End(observability.Record{
		Status:   observability.StatusSuccess,
		InCount:  stats.Scanned,
		OutCount: stats.Assigned,
		Fields:   map[string]any{"skipped": stats.Skipped},
	})
	return stats, nil
}
