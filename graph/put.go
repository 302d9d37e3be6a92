package graph

import (
	"fmt"
	"reflect"

	"github.com/syssam/entgraph"
	"github.com/syssam/entgraph/schema"
)

// Put upserts a record literal and every literal nested in its
// relationship fields, and returns the record for the top-level lid.
//
// Put never fails as a whole. Each problem is reported to the store's
// Reporter and only the offending part of the literal is skipped; fields
// applied before a problem stay applied. The returned record is nil only
// when the top-level literal itself could not be stored.
func (s *Store) Put(lit Literal) *Record {
	s.cfg.stats.Puts.Add(1)
	return s.put(lit)
}

// PutAll puts each literal in order and returns the stored records,
// skipping the ones that failed.
func (s *Store) PutAll(lits ...Literal) []*Record {
	records := make([]*Record, 0, len(lits))
	for _, lit := range lits {
		if r := s.Put(lit); r != nil {
			records = append(records, r)
		}
	}
	return records
}

func (s *Store) put(x any) *Record {
	lit, ok := asLiteral(x)
	if !ok {
		s.warnf(OpPut, "", "", "expected a record literal, got %T", x)
		return nil
	}
	lid, _ := lit[schema.FieldLID].(string)
	if lid == "" {
		s.warnf(OpPut, "", "", "record literal is missing a lid")
		return nil
	}
	r, ok := s.records[lid]
	switch ref, hasType := lit[schema.FieldType]; {
	case !ok:
		if !hasType || ref == nil {
			s.warnf(OpPut, lid, schema.FieldType, "missing type for new record")
			return nil
		}
		typ, err := s.schema.ResolveEntity(ref)
		if err != nil {
			s.warnf(OpPut, lid, schema.FieldType, "%v", err)
			return nil
		}
		// Registered before its fields so nested literals can link back.
		r = newRecord(lid, typ)
		s.records[lid] = r
		s.cfg.stats.Creates.Add(1)
	case hasType && ref != nil:
		typ, err := s.schema.Resolve(ref)
		if err != nil || typ != schema.Type(r.typ) {
			s.warnf(OpPut, lid, schema.FieldType, "type mismatch: record is a %s, not %s", r.typ.Name(), typeName(ref, typ))
			return r
		}
	}
	for _, name := range lit.sortedKeys() {
		if name == schema.FieldLID || name == schema.FieldType {
			continue
		}
		f, ok := r.typ.Field(name)
		if !ok {
			s.warnf(OpPut, lid, name, "unknown field %q on %s", name, r.typ.Name())
			continue
		}
		s.putField(r, f, lit[name])
	}
	return r
}

func (s *Store) putField(r *Record, f *schema.Field, v any) {
	switch f.Kind() {
	case schema.Attr:
		s.putScalar(r, f, v)
	case schema.O2O:
		s.putOneToOne(r, f, v)
	case schema.O2M:
		s.putOneToMany(r, f, v)
	case schema.M2O:
		s.putManyToOne(r, f, v)
	case schema.M2M:
		s.putManyToMany(r, f, v)
	default:
		panic(fmt.Sprintf("graph: unexpected field kind %v for %s", f.Kind(), f))
	}
}

func (s *Store) putScalar(r *Record, f *schema.Field, v any) {
	if v == nil {
		s.clearScalar(r, f)
		return
	}
	val, err := f.Scalar().Validate(v)
	if err != nil {
		s.reject(OpPut, r.lid, f, entgraph.NewValidationError(f.String(), err))
		return
	}
	if val == nil {
		s.clearScalar(r, f)
		return
	}
	if idx := s.index(f); idx != nil {
		if !reflect.TypeOf(val).Comparable() {
			s.reject(OpPut, r.lid, f, entgraph.NewValidationError(f.String(), fmt.Errorf("%T cannot be used as a key", val)))
			return
		}
		if owner, ok := idx[val]; ok && owner != r {
			s.reject(OpPut, r.lid, f, entgraph.NewConstraintError(f.String(), val, owner.lid))
			return
		}
		s.unindex(r, f)
		idx[val] = r
	}
	r.fields[f.Name()] = val
}

func (s *Store) clearScalar(r *Record, f *schema.Field) {
	s.unindex(r, f)
	delete(r.fields, f.Name())
}

// unindex drops the index entry of r's current value of f, if r owns it.
func (s *Store) unindex(r *Record, f *schema.Field) {
	idx := s.index(f)
	if idx == nil {
		return
	}
	if old, ok := r.fields[f.Name()]; ok && idx[old] == r {
		delete(idx, old)
	}
}

// putTarget puts a nested literal and checks it can stand on the other
// side of f.
func (s *Store) putTarget(r *Record, f *schema.Field, v any) *Record {
	target := s.put(v)
	if target == nil {
		return nil
	}
	if !target.typ.Implements(f.Target()) {
		s.warnf(OpPut, r.lid, f.Name(), "%q is a %s, expected %s", target.lid, target.typ.Name(), f.Target().Name())
		return nil
	}
	return target
}

// putList unpacks the value of a collection field. A nil value leaves the
// collection unchanged.
func (s *Store) putList(r *Record, f *schema.Field, v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	items, ok := asList(v)
	if !ok {
		s.warnf(OpPut, r.lid, f.Name(), "expected a list of records for %s, got %T", f, v)
	}
	return items, ok
}

func (s *Store) putOneToOne(r *Record, f *schema.Field, v any) {
	var target *Record
	if v != nil {
		if target = s.putTarget(r, f, v); target == nil {
			return
		}
	}
	name, rev := f.Name(), f.Reverse().Name()
	cur := r.ref(name)
	if cur == target {
		return
	}
	if cur != nil {
		delete(cur.fields, rev)
		delete(r.fields, name)
	}
	if target == nil {
		return
	}
	if prev := target.ref(rev); prev != nil {
		delete(prev.fields, name)
	}
	r.fields[name] = target
	target.fields[rev] = r
}

func (s *Store) putOneToMany(r *Record, f *schema.Field, v any) {
	items, ok := s.putList(r, f, v)
	if !ok {
		return
	}
	name, rev := f.Name(), f.Reverse().Name()
	for _, item := range items {
		child := s.putTarget(r, f, item)
		if child == nil {
			continue
		}
		if _, ok := r.members(name)[child.lid]; ok {
			continue
		}
		if prev := child.ref(rev); prev != nil {
			prev.unset(name, child.lid)
		}
		r.add(name, child)
		child.fields[rev] = r
	}
}

func (s *Store) putManyToOne(r *Record, f *schema.Field, v any) {
	var target *Record
	if v != nil {
		if target = s.putTarget(r, f, v); target == nil {
			return
		}
	}
	name, rev := f.Name(), f.Reverse().Name()
	cur := r.ref(name)
	if cur == target {
		return
	}
	if cur != nil {
		cur.unset(rev, r.lid)
		delete(r.fields, name)
	}
	if target == nil {
		return
	}
	r.fields[name] = target
	target.add(rev, r)
}

func (s *Store) putManyToMany(r *Record, f *schema.Field, v any) {
	items, ok := s.putList(r, f, v)
	if !ok {
		return
	}
	name, rev := f.Name(), f.Reverse().Name()
	for _, item := range items {
		other := s.putTarget(r, f, item)
		if other == nil {
			continue
		}
		r.add(name, other)
		other.add(rev, r)
	}
}

func typeName(ref any, t schema.Type) string {
	if t != nil {
		return t.Name()
	}
	return fmt.Sprint(ref)
}
