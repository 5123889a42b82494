package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/jask/extracta/internal/database"
	"github.com/jask/extracta/internal/database/repository"
	"github.com/jask/extracta/internal/ingest"
	"github.com/jask/extracta/internal/logger"
	"github.com/jask/extracta/internal/mapping"
	"github.com/jask/extracta/internal/normalize"
	"github.com/jask/extracta/internal/observability"
)

// Document statuses.
const (
	DocumentSuccess = "success"
	DocumentFailed  = "failed"
)

// IngestService runs documents through extraction, normalization and storage.
type IngestService struct {
	DB           *sql.DB
	Pipeline     *ingest.Pipeline
	Mapping      *mapping.Config
	LogicVersion string
	Sink         observability.Sink
	// Derivation, when set, runs after every successful insert.
	Derivation *DerivationService
}

// IngestOptions tune a single ingest.
type IngestOptions struct {
	DocumentType string
	// Force replaces the transactions of a document that was already ingested.
	Force bool
}

type IngestResult struct {
	SourceFile      string
	SourceFileHash  string
	RawLines        int
	Normalized      int
	Inserted        int
	Replaced        int
	Skipped         int
	Anomalies       int
	AlreadyIngested bool
	Derivation      *DerivationStats
}

// Ingest processes one document end to end. Re-ingesting a known document is a
// no-op unless opts.Force is set.
func (s *IngestService) Ingest(ctx context.Context, path string, opts IngestOptions) (IngestResult, error) {
	art, err := s.Pipeline.Ingest(ctx, path)
	if err != nil {
		return IngestResult{}, err
	}
	res := IngestResult{SourceFile: art.SourceFile, SourceFileHash: art.SourceFileHash, RawLines: art.RecordCountRaw}
	log := logger.WithFields(logger.FromContext(ctx), map[string]any{
		"source_file": art.SourceFile,
		"file_hash":   art.SourceFileHash,
	})
	doc := repository.Document{
		Filename:     art.SourceFile,
		FileHash:     art.SourceFileHash,
		DocumentType: NormalizeDocumentType(opts.DocumentType),
		Status:       DocumentSuccess,
	}

	rows := ingest.ParseLines(art.Lines)
	cfg := s.Mapping
	if cfg == nil {
		cfg = mapping.Default()
	}
	engine := &normalize.Engine{MappingVersion: cfg.Version, LogicVersion: s.logicVersion(), Sink: s.Sink}
	out, err := engine.Normalize(rows, mapping.Resolve(headersOf(rows), art.SourceFile, cfg),
		normalize.Source{File: art.SourceFile, Hash: art.SourceFileHash})
	if err != nil {
		log.Warn().Err(err).Msg("normalization failed")
		doc.Status = DocumentFailed
		if recErr := s.recordDocument(ctx, doc); recErr != nil {
			err = multierror.Append(err, recErr)
		}
		return res, fmt.Errorf("normalize %s: %w", art.SourceFile, err)
	}
	res.Normalized = out.Stats.Out
	res.Skipped = out.Stats.Skipped
	res.Anomalies = out.Stats.Anomalies

	timer := observability.Start(s.Sink, "persistence")
	err = database.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		docs := repository.NewDocumentRepo(tx)
		txs := repository.NewTransactionRepo(tx)
		if _, err := docs.Record(ctx, doc); err != nil {
			return err
		}
		existing, err := txs.CountBySourceFileHash(ctx, art.SourceFileHash)
		if err != nil {
			return err
		}
		if existing > 0 {
			if !opts.Force {
				res.AlreadyIngested = true
				return nil
			}
			if res.Replaced, err = txs.DeleteBySourceFileHash(ctx, art.SourceFileHash); err != nil {
				return err
			}
		}
		if res.Inserted, err = txs.BulkInsert(ctx, toRecords(out.Transactions)); err != nil {
			return err
		}
		return docs.UpdateStatus(ctx, art.SourceFileHash, DocumentSuccess)
	})
	rec := observability.Record{
		Status:   observability.StatusSuccess,
		InCount:  len(out.Transactions),
		OutCount: res.Inserted,
		Fields: map[string]any{
			"source_file":      art.SourceFile,
			"already_ingested": res.AlreadyIngested,
			"replaced":         res.Replaced,
		},
	}
	if err != nil {
		rec.Status = observability.StatusError
		rec.ErrorCount = 1
		rec.Fields["error"] = err.Error()
	}
	timer.End(rec)
	if err != nil {
		return res, fmt.Errorf("persist %s: %w", art.SourceFile, err)
	}

	if res.AlreadyIngested {
		log.Info().Msg("document already ingested")
		return res, nil
	}
	log.Info().Int("inserted", res.Inserted).Int("replaced", res.Replaced).Int("skipped", res.Skipped).
		Int("anomalies", res.Anomalies).Msg("document ingested")

	if s.Derivation != nil && res.Inserted > 0 {
		stats, err := s.Derivation.Derive(ctx)
		if err != nil {
			return res, fmt.Errorf("derive counterparties: %w", err)
		}
		res.Derivation = &stats
	}
	return res, nil
}

// IngestMany ingests paths one after another. A failing file does not stop
// the rest; all failures are returned together.
func (s *IngestService) IngestMany(ctx context.Context, paths []string, opts IngestOptions) ([]IngestResult, error) {
	var errs *multierror.Error
	results := make([]IngestResult, 0, len(paths))
	for _, p := range paths {
		res, err := s.Ingest(ctx, p, opts)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		results = append(results, res)
	}
	return results, errs.ErrorOrNil()
}

func (s *IngestService) recordDocument(ctx context.Context, doc repository.Document) error {
	docs := repository.NewDocumentRepo(s.DB)
	created, err := docs.Record(ctx, doc)
	if err != nil || created {
		return err
	}
	return docs.UpdateStatus(ctx, doc.FileHash, doc.Status)
}

func (s *IngestService) logicVersion() string {
	if s.LogicVersion == "" {
		return normalize.DefaultLogicVersion
	}
	return s.LogicVersion
}

func headersOf(rows []normalize.RawRow) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		for h := range r {
			if !seen[h] {
				seen[h] = true
				out = append(out, h)
			}
		}
	}
	sort.Strings(out)
	return out
}

func toRecords(in []normalize.Transaction) []repository.Transaction {
	out := make([]repository.Transaction, 0, len(in))
	for _, t := range in {
		cp := t.Counterparty
		out = append(out, repository.Transaction{
			ID:                t.ID,
			TransactionDate:   t.TransactionDate,
			Description:       t.Description,
			AmountIn:          t.AmountIn,
			AmountOut:         t.AmountOut,
			Counterparty:      &cp,
			SourceFile:        t.SourceFile,
			SourceFileHash:    t.SourceFileHash,
			NormalizationHash: t.NormalizationHash,
			Year:              t.Year,
			Month:             t.Month,
			MappingVersion:    t.MappingVersion,
			LogicVersion:      t.LogicVersion,
		})
	}
	return out
}
