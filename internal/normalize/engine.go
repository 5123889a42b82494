package normalize

import (
	"sort"
	"strconv"

	"github.com/jask/extracta/internal/mapping"
	"github.com/jask/extracta/internal/observability"
)

// DefaultLogicVersion identifies the current transformation logic.
const DefaultLogicVersion = "1.0.0"

// Stats counts what happened to a batch.
type Stats struct {
	In        int
	Out       int
	Skipped   int
	Anomalies int
}

// Result is a hash-ordered batch plus its side information.
type Result struct {
	Transactions []Transaction
	Anomalies    []Anomaly
	Stats        Stats
}

// Engine runs validate, map and hash over one document's rows.
type Engine struct {
	MappingVersion string
	LogicVersion   string
	Sink           observability.Sink
}

// Normalize converts rows into canonical transactions sorted by hash. Validator
// failures abort the batch; rows that cannot be mapped are skipped.
func (e *Engine) Normalize(rows []RawRow, res mapping.Resolution, src Source) (Result, error) {
	timer := observability.Start(e.Sink, "normalization")
	out, err := e.normalize(rows, res, src)
	rec := observability.Record{
		Status:   observability.StatusSuccess,
		InCount:  len(rows),
		OutCount: out.Stats.Out,
		Fields: map[string]any{
			"source_file":     src.File,
			"skipped":         out.Stats.Skipped,
			"anomalies":       out.Stats.Anomalies,
			"mapping_version": e.MappingVersion,
			"logic_version":   e.LogicVersion,
		},
	}
	if err != nil {
		rec.Status = observability.StatusError
		rec.ErrorCount = 1
		rec.Fields["error"] = err.Error()
	}
	timer.End(rec)
	return out, err
}

func (e *Engine) normalize(rows []RawRow, res mapping.Resolution, src Source) (Result, error) {
	if e.MappingVersion == "" || e.LogicVersion == "" {
		return Result{}, ErrMissingVersion
	}
	validated, anomalies, err := Validate(Relabel(rows, res), RequiredColumns)
	if err != nil {
		return Result{}, err
	}

	out := Result{Anomalies: anomalies, Stats: Stats{In: len(rows), Anomalies: len(anomalies)}}
	for _, row := range validated {
		t, ok := MapRow(row, src)
		if !ok {
			out.Stats.Skipped++
			continue
		}
		t.Year, err = strconv.Atoi(t.TransactionDate[:4])
		if err != nil {
			return Result{}, err
		}
		t.Month = t.TransactionDate[:7]
		t.MappingVersion = e.MappingVersion
		t.LogicVersion = e.LogicVersion
		t.NormalizationHash, err = Hash(t, e.MappingVersion, e.LogicVersion)
		if err != nil {
			return Result{}, err
		}
		out.Transactions = append(out.Transactions, t)
	}
	sort.SliceStable(out.Transactions, func(i, j int) bool {
		return out.Transactions[i].NormalizationHash < out.Transactions[j].NormalizationHash
	})
	out.Stats.Out = len(out.Transactions)
	return out, nil
}
