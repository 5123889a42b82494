package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jask/extracta/internal/observability"
)

// Artifact is the raw result of ingesting one document.
type Artifact struct {
	SourceFile       string
	SourceFileHash   string
	ExtractionMethod FileType
	ExtractedAt      time.Time
	RecordCountRaw   int
	Lines            []Line
}

// Pipeline routes documents to extractors.
type Pipeline struct {
	Extractors map[FileType]Extractor
	Sink       observability.Sink
}

// NewPipeline wires the default PDF and OCR extractors.
func NewPipeline(sink observability.Sink) *Pipeline {
	return &Pipeline{
		Extractors: map[FileType]Extractor{
			FileTypePDF:   PDFExtractor{},
			FileTypeImage: ImageExtractor{},
		},
		Sink: sink,
	}
}

// Ingest hashes and extracts the document at path. Only an unreadable file or
// an unsupported type is an error; extraction failures yield an empty artifact.
func (p *Pipeline) Ingest(ctx context.Context, path string) (Artifact, error) {
	timer := observability.Start(p.Sink, "ingestion")
	art, err := p.ingest(ctx, path)
	rec := observability.Record{
		Status:   observability.StatusSuccess,
		InCount:  1,
		OutCount: art.RecordCountRaw,
		Fields:   map[string]any{"source_file": filepath.Base(path)},
	}
	if err != nil {
		rec.Status = observability.StatusError
		rec.ErrorCount = 1
		rec.Fields["message"] = err.Error()
	}
	timer.End(rec)
	return art, err
}

func (p *Pipeline) ingest(ctx context.Context, path string) (Artifact, error) {
	if _, err := os.Stat(path); err != nil {
		return Artifact{}, fmt.Errorf("ingest: %w", err)
	}
	ft, err := DetectFileType(path)
	if err != nil {
		return Artifact{}, err
	}
	ex, ok := p.Extractors[ft]
	if !ok {
		return Artifact{}, fmt.Errorf("%w: no extractor for %s", ErrUnsupportedFileType, ft)
	}
	hash, err := FileSHA256(path)
	if err != nil {
		return Artifact{}, err
	}
	lines := ex.Extract(ctx, path)
	return Artifact{
		SourceFile:       filepath.Base(path),
		SourceFileHash:   hash,
		ExtractionMethod: ft,
		ExtractedAt:      time.Now().UTC().Truncate(time.Second),
		RecordCountRaw:   len(lines),
		Lines:            lines,
	}, nil
}
