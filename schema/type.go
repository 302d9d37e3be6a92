package schema

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

type (
	// Type is a named type registered in a schema: either a *Scalar or
	// a *Composite.
	Type interface {
		TypeRef
		// Name returns the name the type was registered under.
		Name() string
		registry() *registry
	}

	// TypeRef refers to a type during declaration. It is either a type
	// handle returned by the Builder or a Named reference resolved by name.
	TypeRef interface {
		isTypeRef()
	}

	// Named refers to a type by its registered name.
	Named string
)

func (Named) isTypeRef() {}

// String returns the referenced name.
func (n Named) String() string { return string(n) }

type (
	// ValidateFunc coerces a raw input into a stored value, or rejects it.
	ValidateFunc func(any) (any, error)

	// SerializeFunc projects a stored value into a JSON-safe value.
	SerializeFunc func(any) any

	// Scalar is an opaque value type. Scalars are immutable once registered.
	Scalar struct {
		reg       *registry
		name      string
		validate  ValidateFunc
		serialize SerializeFunc
		indexed   bool
	}

	// ScalarOption configures a scalar at registration.
	ScalarOption func(*Scalar)
)

// Indexed marks a scalar as index-eligible. Every field typed with an
// indexed scalar is maintained in a unique index by the store. Validated
// values of an indexed scalar must be comparable.
func Indexed() ScalarOption {
	return func(s *Scalar) {
		s.indexed = true
	}
}

func (*Scalar) isTypeRef() {}

func (s *Scalar) registry() *registry {
	if s == nil {
		return nil
	}
	return s.reg
}

// Name returns the scalar name.
func (s *Scalar) Name() string { return s.name }

// String implements fmt.Stringer.
func (s *Scalar) String() string { return s.name }

// Indexed reports whether fields of this scalar feed a unique index.
func (s *Scalar) Indexed() bool { return s.indexed }

// Validate coerces x into a value of this scalar.
func (s *Scalar) Validate(x any) (any, error) {
	if s.validate == nil {
		return x, nil
	}
	return s.validate(x)
}

// Serialize projects a stored value of this scalar.
func (s *Scalar) Serialize(x any) any {
	if s.serialize == nil || x == nil {
		return x
	}
	return s.serialize(x)
}

// Composite is a trait or entity: a named set of fields composed from
// zero or more supertraits.
type Composite struct {
	reg    *registry
	name   string
	entity bool
	supers []*Composite
	// fields defined directly on this type.
	fields map[string]*Field
	// union of fields from this and all super types, set at finalize.
	all map[string]*Field
	// every implemented type (including this one) by name.
	implements map[string]*Composite
}

func newComposite(reg *registry, name string, entity bool, supers []*Composite) (*Composite, error) {
	c := &Composite{
		reg:        reg,
		name:       name,
		entity:     entity,
		supers:     supers,
		fields:     make(map[string]*Field),
		implements: make(map[string]*Composite),
	}
	c.implements[name] = c
	seen := make(map[string]bool, len(supers))
	for _, s := range supers {
		if !s.IsTrait() {
			return nil, fmt.Errorf("%s extends non-trait: %s", name, s.name)
		}
		if seen[s.name] {
			return nil, fmt.Errorf("duplicate super %s in %s", s.name, name)
		}
		seen[s.name] = true
		for n, t := range s.implements {
			c.implements[n] = t
		}
	}
	return c, nil
}

func (*Composite) isTypeRef() {}

func (c *Composite) registry() *registry {
	if c == nil {
		return nil
	}
	return c.reg
}

// Name returns the type name.
func (c *Composite) Name() string { return c.name }

// String implements fmt.Stringer.
func (c *Composite) String() string { return c.name }

// IsEntity reports whether records of this type can be created.
func (c *Composite) IsEntity() bool { return c.entity }

// IsTrait reports whether this type is an abstract trait.
func (c *Composite) IsTrait() bool { return !c.entity }

// Supers returns the direct supertypes.
func (c *Composite) Supers() []*Composite { return slices.Clone(c.supers) }

// Implements reports whether c is t or has t among its supertypes.
func (c *Composite) Implements(t *Composite) bool {
	if t == nil {
		return false
	}
	return c.implements[t.name] == t
}

// Field returns the field with the given name from the flattened field
// table. Before finalize only locally defined fields are visible.
func (c *Composite) Field(name string) (*Field, bool) {
	fields := c.all
	if fields == nil {
		fields = c.fields
	}
	f, ok := fields[name]
	return f, ok
}

// Fields returns the flattened fields sorted by name.
func (c *Composite) Fields() []*Field {
	fields := c.all
	if fields == nil {
		fields = c.fields
	}
	return sortedFields(fields)
}

// LocalFields returns the fields defined directly on this type, sorted by name.
func (c *Composite) LocalFields() []*Field {
	return sortedFields(c.fields)
}

func sortedFields(m map[string]*Field) []*Field {
	fields := make([]*Field, 0, len(m))
	for _, f := range m {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].name < fields[j].name })
	return fields
}

// flatten computes the flattened field table bottom-up. Results are
// memoized on the type, so shared supertypes are visited once.
func (c *Composite) flatten() (map[string]*Field, error) {
	if c.all != nil {
		return c.all, nil
	}
	all := make(map[string]*Field, len(c.fields))
	for name, f := range c.fields {
		all[name] = f
	}
	for _, s := range c.supers {
		sf, err := s.flatten()
		if err != nil {
			return nil, err
		}
		for _, f := range sortedFields(sf) {
			if existing, ok := all[f.name]; ok && existing != f {
				return nil, fmt.Errorf("field %s conflicts between %s and %s", f.name, existing.from.name, f.from.name)
			}
			all[f.name] = f
		}
	}
	c.all = all
	return all, nil
}

// registry holds the types of one schema. It is shared by the Builder
// and the Schema it produces.
type registry struct {
	types  map[string]Type
	order  []Type
	frozen bool
}

func newRegistry() *registry {
	return &registry{types: make(map[string]Type)}
}

func (r *registry) add(t Type) {
	r.types[t.Name()] = t
	r.order = append(r.order, t)
}

// coerce resolves a type handle, a Named reference or a type name.
func (r *registry) coerce(x any) (Type, error) {
	var name string
	switch v := x.(type) {
	case Type:
		if v.registry() == nil {
			return nil, errors.New("missing type")
		}
		if v.registry() != r {
			return nil, fmt.Errorf("cannot use type %s from another schema", v.Name())
		}
		return v, nil
	case Named:
		name = string(v)
	case string:
		name = v
	case nil:
		return nil, errors.New("missing type")
	default:
		return nil, fmt.Errorf("unknown type: %v", x)
	}
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("unknown type: %s", name)
	}
	return t, nil
}

func (r *registry) composite(ref TypeRef) (*Composite, error) {
	t, err := r.coerce(ref)
	if err != nil {
		return nil, err
	}
	c, ok := t.(*Composite)
	if !ok {
		return nil, fmt.Errorf("expected composite type, got scalar %s", t.Name())
	}
	return c, nil
}

func (r *registry) scalar(ref TypeRef) (*Scalar, error) {
	t, err := r.coerce(ref)
	if err != nil {
		return nil, err
	}
	s, ok := t.(*Scalar)
	if !ok {
		return nil, fmt.Errorf("expected scalar, got %s", t.Name())
	}
	return s, nil
}
