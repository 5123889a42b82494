// Package observability carries pipeline stage records to logs and metrics.
package observability

import (
	"sync"
	"time"
)

// Status values used by pipeline stages.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// Record is a flat description of one stage execution.
type Record struct {
	Stage      string
	Status     string
	InCount    int
	OutCount   int
	ErrorCount int
	Duration   time.Duration
	Fields     map[string]any
}

// Sink accepts records. Implementations must not block or fail the caller.
type Sink interface {
	Emit(Record)
}

// Nop discards every record.
type Nop struct{}

func (Nop) Emit(Record) {}

// OrNop returns s, or a Nop sink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

type multi []Sink

// Multi fans a record out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	var m multi
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Emit(r Record) {
	for _, s := range m {
		s.Emit(r)
	}
}

// Recorder keeps records in memory.
type Recorder struct {
	mu      sync.Mutex
	records []Record
}

func (r *Recorder) Emit(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
}

// Records returns a copy of everything emitted so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// ByStage returns the records emitted for stage.
func (r *Recorder) ByStage(stage string) []Record {
	var out []Record
	for _, rec := range r.Records() {
		if rec.Stage == stage {
			out = append(out, rec)
		}
	}
	return out
}

// Timer measures a stage and emits its record.
type Timer struct {
	sink  Sink
	stage string
	start time.Time
}

func Start(sink Sink, stage string) *Timer {
	return &Timer{sink: OrNop(sink), stage: stage, start: time.Now()}
}

// End stamps the duration on rec and emits it. Stage is filled when empty.
func (t *Timer) End(rec Record) {
	if rec.Stage == "" {
		rec.Stage = t.stage
	}
	rec.Duration = time.Since(t.start)
	t.sink.Emit(rec)
}
