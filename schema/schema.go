package schema

import (
	"slices"
)

// Schema is a finalized, immutable type registry.
type Schema struct {
	reg    *registry
	entity *Composite
}

// Type returns the type registered under name.
func (s *Schema) Type(name string) (Type, bool) {
	t, ok := s.reg.types[name]
	return t, ok
}

// Composite returns the trait or entity registered under name.
func (s *Schema) Composite(name string) (*Composite, bool) {
	c, ok := s.reg.types[name].(*Composite)
	return c, ok
}

// Scalar returns the scalar registered under name.
func (s *Schema) Scalar(name string) (*Scalar, bool) {
	sc, ok := s.reg.types[name].(*Scalar)
	return sc, ok
}

// Resolve coerces a type handle, a Named reference or a type name into a
// type of this schema.
func (s *Schema) Resolve(x any) (Type, error) {
	return s.reg.coerce(x)
}

// ResolveEntity coerces x into an entity type of this schema.
func (s *Schema) ResolveEntity(x any) (*Composite, error) {
	t, err := s.reg.coerce(x)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*Composite)
	if !ok || !c.IsEntity() {
		return nil, &notEntityError{name: t.Name()}
	}
	return c, nil
}

// Types returns all types in registration order, built-ins first.
func (s *Schema) Types() []Type {
	return slices.Clone(s.reg.order)
}

// Entity returns the built-in Entity trait.
func (s *Schema) Entity() *Composite { return s.entity }

// IndexedFields returns every index-eligible field defined by a composite
// type, in registration order of the defining type.
func (s *Schema) IndexedFields() []*Field {
	var fields []*Field
	for _, t := range s.reg.order {
		c, ok := t.(*Composite)
		if !ok {
			continue
		}
		for _, f := range c.LocalFields() {
			if f.Indexed() {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

type notEntityError struct{ name string }

func (e *notEntityError) Error() string { return "not an entity type: " + e.name }
