package graph

import (
	"slices"

	"github.com/syssam/entgraph/schema"
)

// members is the keyed collection behind a many-cardinality field.
type members map[string]*Record

// Record is a live record of the store. Records are owned by the store;
// a *Record handed out by Put is a read-only view that stays valid until
// the record is destroyed.
type Record struct {
	lid string
	typ *schema.Composite
	// scalar value, *Record for singular relationships, or members.
	fields map[string]any
}

func newRecord(lid string, typ *schema.Composite) *Record {
	return &Record{lid: lid, typ: typ, fields: make(map[string]any)}
}

// LID returns the record's local identifier.
func (r *Record) LID() string { return r.lid }

// Type returns the entity type the record was created as.
func (r *Record) Type() *schema.Composite { return r.typ }

// Value returns the stored value of a scalar field. It implements
// schema.Accessor.
func (r *Record) Value(name string) (any, bool) {
	switch name {
	case schema.FieldLID:
		return r.lid, true
	case schema.FieldType:
		return r.typ, true
	}
	f, ok := r.typ.Field(name)
	if !ok || f.Kind() != schema.Attr {
		return nil, false
	}
	v, ok := r.fields[name]
	return v, ok
}

// Ref returns the record linked through a singular relationship field.
func (r *Record) Ref(name string) (*Record, bool) {
	other := r.ref(name)
	return other, other != nil
}

// Refs returns the records linked through a collection field, in the
// field's order.
func (r *Record) Refs(name string) []*Record {
	f, ok := r.typ.Field(name)
	if !ok {
		return nil
	}
	return r.sorted(f)
}

// Has reports whether the field currently holds a value.
func (r *Record) Has(name string) bool {
	_, ok := r.fields[name]
	return ok
}

func (r *Record) ref(name string) *Record {
	other, _ := r.fields[name].(*Record)
	return other
}

func (r *Record) members(name string) members {
	m, _ := r.fields[name].(members)
	return m
}

// add inserts other into the named collection, creating it on first use.
func (r *Record) add(name string, other *Record) {
	m := r.members(name)
	if m == nil {
		m = make(members)
		r.fields[name] = m
	}
	m[other.lid] = other
}

// unset removes lid from the named collection and prunes the field once
// the collection is empty. It reports whether lid was a member.
func (r *Record) unset(name, lid string) bool {
	m := r.members(name)
	if _, ok := m[lid]; !ok {
		return false
	}
	delete(m, lid)
	if len(m) == 0 {
		delete(r.fields, name)
	}
	return true
}

// sorted returns the members of a collection field ordered by the
// field's compare function.
func (r *Record) sorted(f *schema.Field) []*Record {
	m := r.members(f.Name())
	out := make([]*Record, 0, len(m))
	for _, other := range m {
		out = append(out, other)
	}
	slices.SortStableFunc(out, func(a, b *Record) int {
		return f.Compare(a, b)
	})
	return out
}
