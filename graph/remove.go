package graph

import "github.com/syssam/entgraph/schema"

// Remove severs the link between two records along a relationship field
// of the first one, without deleting either record. Missing records and
// links that do not hold are ignored.
func (s *Store) Remove(from, relation, to string) {
	r, ok := s.records[from]
	if !ok {
		return
	}
	f, ok := r.typ.Field(relation)
	if !ok {
		s.warnf(OpRemove, from, relation, "unknown field %q on %s", relation, r.typ.Name())
		return
	}
	if !f.Kind().IsRelation() {
		s.warnf(OpRemove, from, relation, "cannot remove from %s field %s", f.Kind(), f)
		return
	}
	other, ok := s.records[to]
	if !ok {
		return
	}
	if unlink(r, f, other) {
		s.cfg.stats.Removes.Add(1)
	}
}

// unlink severs the link from r to other along f, and the reverse link.
// It reports whether the link held.
func unlink(r *Record, f *schema.Field, other *Record) bool {
	name, rev := f.Name(), f.Reverse().Name()
	switch f.Kind() {
	case schema.O2O:
		if r.ref(name) != other {
			return false
		}
		delete(r.fields, name)
		if other.ref(rev) == r {
			delete(other.fields, rev)
		}
	case schema.O2M:
		if !r.unset(name, other.lid) {
			return false
		}
		if other.ref(rev) == r {
			delete(other.fields, rev)
		}
	case schema.M2O:
		if r.ref(name) != other {
			return false
		}
		delete(r.fields, name)
		other.unset(rev, r.lid)
	case schema.M2M:
		if !r.unset(name, other.lid) {
			return false
		}
		other.unset(rev, r.lid)
	default:
		return false
	}
	return true
}

// Destroy deletes the record with the given lid together with all its
// links and index entries. Records related through a field that cascades
// are destroyed afterwards, once the record is fully unlinked; a record
// reached twice is destroyed once.
func (s *Store) Destroy(lid string) {
	r, ok := s.records[lid]
	if !ok {
		return
	}
	for queue := []*Record{r}; len(queue) > 0; {
		r := queue[0]
		queue = queue[1:]
		if s.records[r.lid] != r {
			continue
		}
		queue = append(queue, s.destroy(r)...)
	}
}

// destroy unlinks a single record and returns the records its cascading
// fields pointed at.
func (s *Store) destroy(r *Record) []*Record {
	delete(s.records, r.lid)
	s.cfg.stats.Destroys.Add(1)
	var cascade []*Record
	for _, f := range r.typ.Fields() {
		name := f.Name()
		if !r.Has(name) {
			continue
		}
		var related []*Record
		switch f.Kind() {
		case schema.Attr:
			s.unindex(r, f)
		case schema.O2O, schema.M2O:
			related = []*Record{r.ref(name)}
		case schema.O2M, schema.M2M:
			related = r.sorted(f)
		}
		for _, other := range related {
			unlink(r, f, other)
		}
		if f.CascadeDestroy() {
			cascade = append(cascade, related...)
		}
	}
	clear(r.fields)
	return cascade
}
