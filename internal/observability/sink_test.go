package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMultiAndRecorder(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	sink := Multi(a, nil, b)
	sink.Emit(Record{Stage: "normalization", Status: StatusSuccess, OutCount: 3})

	require.Len(t, a.Records(), 1)
	require.Len(t, b.ByStage("normalization"), 1)
	require.Empty(t, b.ByStage("report"))
}

func TestTimerStampsDuration(t *testing.T) {
	rec := &Recorder{}
	timer := Start(rec, "report")
	time.Sleep(time.Millisecond)
	timer.End(Record{Status: StatusSuccess})

	got := rec.Records()
	require.Len(t, got, 1)
	require.Equal(t, "report", got[0].Stage)
	require.Positive(t, got[0].Duration)
}

func TestOrNop(t *testing.T) {
	require.NotPanics(t, func() { OrNop(nil).Emit(Record{}) })
}

func TestLogSinkFields(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewLogSink(zerolog.New(buf))
	sink.Emit(Record{
		Stage:    "counterparty_autoderive_fail",
		Status:   StatusSkipped,
		InCount:  1,
		Duration: 1500 * time.Millisecond,
		Fields:   map[string]any{"reason": "heuristic_unknown"},
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "counterparty_autoderive_fail", line["stage"])
	require.Equal(t, "heuristic_unknown", line["reason"])
	require.EqualValues(t, 1500, line["duration_ms"])
	require.NoError(t, sink.Close())
}

func TestFileLogSinkFlushesOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.log")
	f, err := os.Create(path)
	require.NoError(t, err)

	sink := NewFileLogSink(f)
	sink.Emit(Record{Stage: "ingestion", Status: StatusSuccess, OutCount: 2})
	require.Eventually(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), `"stage":"ingestion"`)
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, sink.Close())
}

func TestMetricsCountsAndTextfile(t *testing.T) {
	m := NewMetrics()
	m.Emit(Record{Stage: "normalization", Status: StatusSuccess, InCount: 4, OutCount: 3})
	m.Emit(Record{Stage: "normalization", Status: StatusSuccess, InCount: 1, OutCount: 1})

	require.Equal(t, 2.0, testutil.ToFloat64(m.records.WithLabelValues("normalization", StatusSuccess)))
	require.Equal(t, 5.0, testutil.ToFloat64(m.items.WithLabelValues("normalization", "in")))

	path := filepath.Join(t.TempDir(), "extracta.prom")
	require.NoError(t, m.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "extracta_stage_runs_total"))
}
