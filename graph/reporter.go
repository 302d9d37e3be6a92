package graph

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.uber.org/zap"
)

// Severity classifies a diagnostic.
type Severity int

// Severities.
const (
	// SeverityWarning marks a skipped sub-operation caused by misuse,
	// such as an unknown field or a literal without a lid.
	SeverityWarning Severity = iota
	// SeverityError marks a rejected value: a validation failure or a
	// unique key collision.
	SeverityError
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic describes one recoverable problem met by a store operation.
type Diagnostic struct {
	Severity Severity
	// Op is the store operation: put, lookup, remove or destroy.
	Op string
	// LID of the record being operated on, if known.
	LID string
	// Field being written or read, if any.
	Field string
	// Err holds the typed cause, one of the entgraph error types.
	Err error
}

// String returns a human-readable message.
func (d Diagnostic) String() string {
	msg := "<nil>"
	if d.Err != nil {
		msg = d.Err.Error()
	}
	if d.LID != "" {
		return fmt.Sprintf("%s (lid=%q)", msg, d.LID)
	}
	return msg
}

// Reporter receives the diagnostics of a store. Stores never fail a call
// because of a recoverable problem; they report it and move on.
type Reporter interface {
	Report(Diagnostic)
}

// The ReporterFunc type is an adapter to allow the use of ordinary
// functions as Reporter.
type ReporterFunc func(Diagnostic)

// Report calls f(d).
func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

type slogReporter struct{ logger *slog.Logger }

// SlogReporter logs diagnostics to a slog.Logger. A nil logger uses
// slog.Default().
func SlogReporter(logger *slog.Logger) Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return slogReporter{logger: logger}
}

func (r slogReporter) Report(d Diagnostic) {
	level := slog.LevelWarn
	if d.Severity == SeverityError {
		level = slog.LevelError
	}
	r.logger.LogAttrs(context.Background(), level, d.Err.Error(),
		slog.String("op", d.Op),
		slog.String("lid", d.LID),
		slog.String("field", d.Field),
	)
}

type zapReporter struct{ logger *zap.Logger }

// ZapReporter logs diagnostics to a zap.Logger.
func ZapReporter(logger *zap.Logger) Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return zapReporter{logger: logger}
}

func (r zapReporter) Report(d Diagnostic) {
	fields := []zap.Field{
		zap.String("op", d.Op),
		zap.String("lid", d.LID),
		zap.String("field", d.Field),
	}
	if d.Severity == SeverityError {
		r.logger.Error(d.Err.Error(), fields...)
		return
	}
	r.logger.Warn(d.Err.Error(), fields...)
}

// Recorder is a Reporter that keeps every diagnostic in memory, for
// callers that want to inspect all problems of a batch put at once.
type Recorder struct {
	mu    sync.Mutex
	diags []Diagnostic
}

// Report implements Reporter.
func (r *Recorder) Report(d Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// Diagnostics returns the recorded diagnostics.
func (r *Recorder) Diagnostics() []Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Diagnostic(nil), r.diags...)
}

// Messages returns the recorded diagnostics as strings.
func (r *Recorder) Messages() []string {
	diags := r.Diagnostics()
	msgs := make([]string, len(diags))
	for i, d := range diags {
		msgs[i] = d.String()
	}
	return msgs
}

// Reset drops the recorded diagnostics.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = nil
}
