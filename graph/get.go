package graph

import (
	"reflect"

	"github.com/syssam/entgraph/schema"
)

// Projection is the tree-shaped read view of a record returned by Get and
// Lookup. It holds "lid", "type" and one entry per field of the record's
// type:
//
//   - scalar fields hold the stored value, or the serialized value when
//     reading WithSerialize(true), or nil when unset;
//   - singular relationships hold a nested Projection, or nil when unset;
//   - collections hold a []Projection ordered by the field's compare
//     function, empty when unset.
//
// A related record is reduced to a {"lid": ...} stub when the depth bound
// is reached or when it is already being expanded higher up the tree.
type Projection map[string]any

// LID returns the projected record's lid.
func (p Projection) LID() string {
	lid, _ := p[schema.FieldLID].(string)
	return lid
}

// IsStub reports whether the projection holds nothing but a lid.
func (p Projection) IsStub() bool {
	_, ok := p[schema.FieldLID]
	return ok && len(p) == 1
}

// Get projects the record identified by lid. It returns false when no
// such record is live.
func (s *Store) Get(lid string, opts ...GetOption) (Projection, bool) {
	r, ok := s.records[lid]
	if !ok {
		return nil, false
	}
	return s.project(r, opts), true
}

// Lookup finds the record whose indexed attribute holds value and
// projects it. The type may be a handle, a schema.Named or a type name;
// records of subtypes are found through the indexes of their supertypes.
//
// An unknown type or attribute, or an attribute that is not indexed, is
// reported. A value the attribute's scalar type rejects finds nothing.
func (s *Store) Lookup(typ any, attr string, value any, opts ...GetOption) (Projection, bool) {
	r := s.find(typ, attr, value)
	if r == nil {
		return nil, false
	}
	return s.project(r, opts), true
}

func (s *Store) find(typ any, attr string, value any) *Record {
	t, err := s.schema.Resolve(typ)
	if err != nil {
		s.warnf(OpLookup, "", attr, "%v", err)
		return nil
	}
	c, ok := t.(*schema.Composite)
	if !ok {
		s.warnf(OpLookup, "", attr, "cannot look up scalar type %s", t.Name())
		return nil
	}
	f, ok := c.Field(attr)
	if !ok {
		s.warnf(OpLookup, "", attr, "unknown field %q on %s", attr, c.Name())
		return nil
	}
	idx := s.index(f)
	if idx == nil {
		s.warnf(OpLookup, "", attr, "field %s is not indexed", f)
		return nil
	}
	val, err := f.Scalar().Validate(value)
	if err != nil || val == nil || !reflect.TypeOf(val).Comparable() {
		return nil
	}
	r, ok := idx[val]
	if !ok || !r.typ.Implements(c) {
		return nil
	}
	return r
}

func (s *Store) project(r *Record, opts []GetOption) Projection {
	cfg := readConfig{depth: s.cfg.depth, serialize: s.cfg.serialize}
	for _, opt := range opts {
		opt(&cfg)
	}
	p := &projector{cfg: cfg, inside: make(map[*Record]bool)}
	return p.project(r)
}

type projector struct {
	cfg    readConfig
	inside map[*Record]bool
	level  int
}

func (p *projector) project(r *Record) Projection {
	if p.inside[r] || (p.cfg.depth > 0 && p.level >= p.cfg.depth) {
		return Projection{schema.FieldLID: r.lid}
	}
	p.inside[r] = true
	p.level++
	defer func() {
		delete(p.inside, r)
		p.level--
	}()
	out := Projection{
		schema.FieldLID:  r.lid,
		schema.FieldType: p.typeValue(r.typ),
	}
	for _, f := range r.typ.Fields() {
		name := f.Name()
		if name == schema.FieldLID || name == schema.FieldType {
			continue
		}
		switch f.Kind() {
		case schema.Attr:
			v, ok := r.fields[name]
			switch {
			case !ok:
				out[name] = nil
			case p.cfg.serialize:
				out[name] = f.Scalar().Serialize(v)
			default:
				out[name] = v
			}
		case schema.O2O, schema.M2O:
			if other := r.ref(name); other != nil {
				out[name] = p.project(other)
			} else {
				out[name] = nil
			}
		case schema.O2M, schema.M2M:
			related := r.sorted(f)
			list := make([]Projection, len(related))
			for i, other := range related {
				list[i] = p.project(other)
			}
			out[name] = list
		}
	}
	return out
}

func (p *projector) typeValue(t *schema.Composite) any {
	if p.cfg.serialize {
		return t.Name()
	}
	return t
}
