package graph_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/syssam/entgraph"
	"github.com/syssam/entgraph/graph"
)

func TestDiagnosticString(t *testing.T) {
	t.Parallel()

	d := graph.Diagnostic{Err: errors.New("boom")}
	assert.Equal(t, "boom", d.String())
	d.LID = "x"
	assert.Equal(t, `boom (lid="x")`, d.String())
	assert.Equal(t, "<nil>", graph.Diagnostic{}.String())
	assert.Equal(t, "warning", graph.SeverityWarning.String())
	assert.Equal(t, "error", graph.SeverityError.String())
}

func TestSlogReporter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	s := graph.New(testSchema(t), graph.WithLogger(logger))
	s.Put(graph.Literal{"lid": "p", "type": "Thing", "mystery": 1, "known": 2})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var entries []map[string]any
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	assert.Equal(t, "ERROR", entries[0]["level"])
	assert.Equal(t, "entgraph: error validating Thing.known: expected string", entries[0]["msg"])
	assert.Equal(t, "known", entries[0]["field"])
	assert.Equal(t, "WARN", entries[1]["level"])
	assert.Equal(t, `entgraph: put: unknown field "mystery" on Thing`, entries[1]["msg"])
	assert.Equal(t, "put", entries[1]["op"])
	assert.Equal(t, "p", entries[1]["lid"])
}

func TestZapReporter(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	s := graph.New(testSchema(t), graph.WithReporter(graph.ZapReporter(zap.New(core))))
	s.Put(graph.Literal{"lid": "p"})
	s.Put(graph.Literal{"lid": "n", "type": "Node", "index": "x"})

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "entgraph: put: missing type for new record", entries[0].Message)
	assert.Equal(t, map[string]any{"op": "put", "lid": "p", "field": "type"}, entries[0].ContextMap())
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "index", entries[1].ContextMap()["field"])

	// A nil logger discards.
	graph.ZapReporter(nil).Report(graph.Diagnostic{Err: errors.New("dropped")})
}

func TestReporterFunc(t *testing.T) {
	t.Parallel()

	var got []graph.Diagnostic
	s := graph.New(testSchema(t), graph.WithReporter(graph.ReporterFunc(func(d graph.Diagnostic) {
		got = append(got, d)
	})))
	s.Remove("ghost", "children", "x")
	s.Put(graph.Literal{"lid": "r", "type": "Node"})
	s.Remove("r", "index", "x")
	require.Len(t, got, 1)
	assert.Equal(t, graph.OpRemove, got[0].Op)
	assert.Equal(t, "index", got[0].Field)
	assert.True(t, entgraph.IsUsageError(got[0].Err))

	// Nil reporters keep the previous one.
	s = graph.New(testSchema(t), graph.WithReporter(graph.Discard), graph.WithReporter(nil))
	s.Put(graph.Literal{})
	assert.EqualValues(t, 1, s.Stats().Diagnostics.Load())
}

func TestRecorder(t *testing.T) {
	t.Parallel()

	rec := &graph.Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Report(graph.Diagnostic{Err: errors.New("x")})
		}()
	}
	wg.Wait()
	assert.Len(t, rec.Diagnostics(), 10)
	assert.Len(t, rec.Messages(), 10)
	rec.Reset()
	assert.Empty(t, rec.Diagnostics())
}
