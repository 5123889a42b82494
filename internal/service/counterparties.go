package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/observability"
)

// CounterpartyService manages canonical counterparty entities.
type CounterpartyService struct {
	DB   *sql.DB
	Sink observability.Sink
}

func (s *CounterpartyService) List(ctx context.Context) ([]repository.CounterpartyUsage, error) {
	return repository.NewCounterpartyRepo(s.DB).List(ctx)
}

// Rename changes the display name of a counterparty and of every transaction
// pointing at it.
func (s *CounterpartyService) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	var old string
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		cps := repository.NewCounterpartyRepo(tx)
		current, err := cps.Get(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return fmt.Errorf("counterparty %d: %w", id, ErrNotFound)
		}
		clash, err := cps.FindByNormalized(ctx, repository.NormalizeName(name))
		if err != nil {
			return err
		}
		if clash != nil && clash.ID != id {
			return fmt.Errorf("%w: %q", ErrRenameCollision, name)
		}
		old = current.Name
		if err := cps.Rename(ctx, id, name); err != nil {
			return err
		}
		return repository.NewTransactionRepo(tx).RenameCounterparty(ctx, id, name)
	})
	if err != nil {
		return err
	}
	observability.OrNop(s.Sink).Emit(observability.Record{
		Stage:  "counterparty_rename",
		Status: observability.StatusSuccess,
		Fields: map[string]any{"counterparty_id": id, "old_name": old, "new_name": name},
	})
	return nil
}

// Merge moves the transactions of losers onto winner and deletes the losers.
// It returns the number of reassigned transactions.
func (s *CounterpartyService) Merge(ctx context.Context, winner int64, losers []int64) (int, error) {
	moved := 0
	err := database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		cps := repository.NewCounterpartyRepo(tx)
		txs := repository.NewTransactionRepo(tx)
		w, err := cps.Get(ctx, winner)
		if err != nil {
			return err
		}
		if w == nil {
			return fmt.Errorf("counterparty %d: %w", winner, ErrNotFound)
		}
		for _, l := range losers {
			if l == winner {
				continue
			}
			lc, err := cps.Get(ctx, l)
			if err != nil {
				return err
			}
			if lc == nil {
				return fmt.Errorf("counterparty %d: %w", l, ErrNotFound)
			}
			n, err := txs.ReassignCounterparty(ctx, l, winner, w.Name)
			if err != nil {
				return err
			}
			moved += n
			if err := cps.Delete(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	observability.OrNop(s.Sink).Emit(observability.Record{
		Stage:    "counterparty_merge",
		Status:   observability.StatusSuccess,
		InCount:  len(losers),
		OutCount: moved,
		Fields:   map[string]any{"winner_id": winner, "loser_ids": losers},
	})
	return moved, nil
}

// MergeSuggestion pairs two counterparties with similar names.
type MergeSuggestion struct {
	A, B       repository.Counterparty
	Similarity float64
}

// SuggestMerges returns pairs whose normalized names differ by at most
// maxRatio edits per character, most similar first.
func (s *CounterpartyService) SuggestMerges(ctx context.Context, maxRatio float64) ([]MergeSuggestion, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []MergeSuggestion
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i].Counterparty, all[j].Counterparty
			ratio := editRatio(a.NameNormalized, b.NameNormalized)
			if ratio <= maxRatio {
				out = append(out, MergeSuggestion{A: a, B: b, Similarity: 1 - ratio})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out, nil
}

func editRatio(a, b string) float64 {
	longest := max(len(a), len(b))
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}
