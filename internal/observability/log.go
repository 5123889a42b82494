package observability

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
)

// LogSink writes each record as a structured log line.
type LogSink struct {
	log    zerolog.Logger
	closer io.Closer
}

// NewLogSink logs records through log.
func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

// NewFileLogSink writes JSON-lines records to w through a non-blocking diode
// buffer. Records are dropped rather than stalling the pipeline when w lags.
func NewFileLogSink(w io.Writer) *LogSink {
	d := diode.NewWriter(w, 1000, 10*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "observability: dropped %d records\n", missed)
	})
	return &LogSink{
		log:    zerolog.New(d).With().Timestamp().Logger(),
		closer: d,
	}
}

func (s *LogSink) Emit(r Record) {
	ev := s.log.Info()
	if r.Status == StatusError {
		ev = s.log.Warn()
	}
	ev = ev.Str("stage", r.Stage).
		Str("status", r.Status).
		Int("in_count", r.InCount).
		Int("out_count", r.OutCount).
		Int("error_count", r.ErrorCount).
		Int64("duration_ms", r.Duration.Milliseconds())
	if len(r.Fields) > 0 {
		ev = ev.Fields(r.Fields)
	}
	ev.Msg(r.Stage)
}

// Close flushes the diode buffer and closes the underlying writer when it is closable.
func (s *LogSink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
