package graph

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/syssam/entgraph"
	"github.com/syssam/entgraph/schema"
)

// Store operation names used in diagnostics.
const (
	OpPut     = "put"
	OpGet     = "get"
	OpLookup  = "lookup"
	OpRemove  = "remove"
	OpDestroy = "destroy"
)

// Store is an in-memory graph of records typed by a finalized schema.
//
// A Store is not safe for concurrent use. Wrap it with Synchronized when
// more than one goroutine needs access.
type Store struct {
	schema  *schema.Schema
	cfg     config
	records map[string]*Record
	// unique indexes, keyed by the defining field.
	indexes map[*schema.Field]map[any]*Record
}

// New returns an empty store for the given schema.
func New(s *schema.Schema, opts ...Option) *Store {
	cfg := config{
		reporter: SlogReporter(nil),
		stats:    &Stats{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	st := &Store{
		schema:  s,
		cfg:     cfg,
		records: make(map[string]*Record),
		indexes: make(map[*schema.Field]map[any]*Record),
	}
	for _, f := range s.IndexedFields() {
		st.indexes[f] = make(map[any]*Record)
	}
	return st
}

// Schema returns the schema the store was created with.
func (s *Store) Schema() *schema.Schema { return s.schema }

// Stats returns the store's operation counters.
func (s *Store) Stats() *Stats { return s.cfg.stats }

// Len returns the number of live records.
func (s *Store) Len() int { return len(s.records) }

// Has reports whether a record with the given lid is live.
func (s *Store) Has(lid string) bool {
	_, ok := s.records[lid]
	return ok
}

// Record returns the live record for lid.
func (s *Store) Record(lid string) (*Record, bool) {
	r, ok := s.records[lid]
	return r, ok
}

// LIDs returns the lids of all live records in ascending order.
func (s *Store) LIDs() []string {
	lids := make([]string, 0, len(s.records))
	for lid := range s.records {
		lids = append(lids, lid)
	}
	sort.Strings(lids)
	return lids
}

// NewLID returns a fresh random lid.
func NewLID() string {
	return uuid.NewString()
}

func (s *Store) report(d Diagnostic) {
	s.cfg.stats.Diagnostics.Add(1)
	s.cfg.reporter.Report(d)
}

// warnf reports a usage problem.
func (s *Store) warnf(op, lid, field, format string, args ...any) {
	s.report(Diagnostic{
		Severity: SeverityWarning,
		Op:       op,
		LID:      lid,
		Field:    field,
		Err:      entgraph.NewUsageError(op, format, args...),
	})
}

// reject reports a value that was refused by validation or a constraint.
func (s *Store) reject(op, lid string, f *schema.Field, err error) {
	s.report(Diagnostic{
		Severity: SeverityError,
		Op:       op,
		LID:      lid,
		Field:    f.Name(),
		Err:      err,
	})
}

// index returns the unique index fed by f, or nil.
func (s *Store) index(f *schema.Field) map[any]*Record {
	return s.indexes[f]
}

func (s *Store) String() string {
	return fmt.Sprintf("graph.Store(records=%d)", len(s.records))
}
