package schema

import (
	"fmt"
	"sort"

	"github.com/syssam/entgraph"
)

type (
	// Declarations are the fields attached to the registered types by Finalize.
	Declarations struct {
		Attributes    []Attribute
		Relationships []Relationship
	}

	// Attribute declares a scalar field Name of type Scalar on Type.
	Attribute struct {
		Type   TypeRef
		Name   string
		Scalar TypeRef
	}

	// Relationship declares a pair of fields linking two composite types.
	Relationship struct {
		Left, Right End
	}

	// End is one side of a relationship: the field Name added to Type.
	// Cardinality is the number of records the field holds.
	End struct {
		Type        TypeRef
		Cardinality Cardinality
		Name        string
		// Compare orders the members of a Many field. Defaults to lid order.
		Compare CompareFunc
		// CascadeDestroy destroys the related records along this field
		// when the owner is destroyed.
		CascadeDestroy bool
	}
)

// Attrs is a convenience for declaring several attributes of one type.
// The attributes are returned in name order.
func Attrs(t TypeRef, fields map[string]TypeRef) []Attribute {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	attrs := make([]Attribute, 0, len(names))
	for _, name := range names {
		attrs = append(attrs, Attribute{Type: t, Name: name, Scalar: fields[name]})
	}
	return attrs
}

// Builder accumulates type declarations. Finalize turns it into an
// immutable Schema; every later call on the builder fails with
// entgraph.ErrFinalized.
type Builder struct {
	reg    *registry
	entity *Composite
}

// NewBuilder returns a builder with the built-in types registered.
func NewBuilder() *Builder {
	b := &Builder{reg: newRegistry()}
	b.registerBuiltins()
	return b
}

func (b *Builder) checkOpen(name string) error {
	if b.reg.frozen {
		return entgraph.NewSchemaError(name, "", "", entgraph.ErrFinalized)
	}
	if _, ok := b.reg.types[name]; ok {
		return entgraph.NewSchemaError(name, "", "redefinition of type", nil)
	}
	if name == "" {
		return entgraph.NewSchemaError("", "", "missing type name", nil)
	}
	return nil
}

// Scalar registers a scalar type. A nil validate accepts any value
// unchanged; a nil serialize projects values unchanged.
func (b *Builder) Scalar(name string, validate ValidateFunc, serialize SerializeFunc, opts ...ScalarOption) (*Scalar, error) {
	if err := b.checkOpen(name); err != nil {
		return nil, err
	}
	s := &Scalar{reg: b.reg, name: name, validate: validate, serialize: serialize}
	for _, opt := range opts {
		opt(s)
	}
	b.reg.add(s)
	return s, nil
}

// Trait registers an abstract composite type extending the given traits.
func (b *Builder) Trait(name string, supers ...TypeRef) (*Composite, error) {
	return b.composite(name, false, supers)
}

// Entity registers a concrete composite type extending the given traits.
// Every entity implicitly extends the built-in Entity trait.
func (b *Builder) Entity(name string, supers ...TypeRef) (*Composite, error) {
	return b.composite(name, true, supers)
}

func (b *Builder) composite(name string, entity bool, refs []TypeRef) (*Composite, error) {
	if err := b.checkOpen(name); err != nil {
		return nil, err
	}
	supers := make([]*Composite, 0, len(refs)+1)
	for _, ref := range refs {
		c, err := b.reg.composite(ref)
		if err != nil {
			return nil, entgraph.NewSchemaError(name, "", "invalid supertype", err)
		}
		supers = append(supers, c)
	}
	if entity {
		supers = append(supers, b.entity)
	}
	c, err := newComposite(b.reg, name, entity, supers)
	if err != nil {
		return nil, entgraph.NewSchemaError(name, "", err.Error(), nil)
	}
	b.reg.add(c)
	return c, nil
}

// Type returns a registered type by name.
func (b *Builder) Type(name string) (Type, bool) {
	t, ok := b.reg.types[name]
	return t, ok
}

// Finalize attaches the declared fields, flattens every composite's
// field table and freezes the registry. Finalize runs once: whether it
// succeeds or not, the builder cannot be used afterwards.
func (b *Builder) Finalize(d Declarations) (*Schema, error) {
	if b.reg.frozen {
		return nil, entgraph.NewSchemaError("", "", "", entgraph.ErrFinalized)
	}
	b.reg.frozen = true
	for _, a := range d.Attributes {
		if err := b.attachAttribute(a); err != nil {
			return nil, err
		}
	}
	for _, r := range d.Relationships {
		if err := b.attachRelationship(r); err != nil {
			return nil, err
		}
	}
	for _, t := range b.reg.order {
		c, ok := t.(*Composite)
		if !ok {
			continue
		}
		if _, err := c.flatten(); err != nil {
			return nil, entgraph.NewSchemaError(c.name, "", err.Error(), nil)
		}
	}
	return &Schema{reg: b.reg, entity: b.entity}, nil
}

func (b *Builder) attachAttribute(a Attribute) error {
	c, err := b.reg.composite(a.Type)
	if err != nil {
		return entgraph.NewSchemaError(refName(a.Type), a.Name, "invalid attribute owner", err)
	}
	if err := checkFieldName(c, a.Name); err != nil {
		return err
	}
	s, err := b.reg.scalar(a.Scalar)
	if err != nil {
		return entgraph.NewSchemaError(c.name, a.Name, "expected scalar", err)
	}
	c.fields[a.Name] = &Field{
		name:        a.Name,
		kind:        Attr,
		cardinality: One,
		from:        c,
		scalar:      s,
	}
	return nil
}

func (b *Builder) attachRelationship(r Relationship) error {
	left, err := b.reg.composite(r.Left.Type)
	if err != nil {
		return entgraph.NewRelationError(refName(r.Left.Type), refName(r.Right.Type), r.Left.Name, "invalid endpoint", err)
	}
	right, err := b.reg.composite(r.Right.Type)
	if err != nil {
		return entgraph.NewRelationError(left.name, refName(r.Right.Type), r.Right.Name, "invalid endpoint", err)
	}
	for _, e := range []End{r.Left, r.Right} {
		if e.Cardinality != One && e.Cardinality != Many {
			return entgraph.NewRelationError(left.name, right.name, e.Name, fmt.Sprintf("invalid cardinality %d", e.Cardinality), nil)
		}
	}
	if left == right && r.Left.Name == r.Right.Name {
		return entgraph.NewRelationError(left.name, right.name, r.Left.Name, "relation names its own reverse", nil)
	}
	l, err := newRelationField(left, right, r.Left, r.Right.Cardinality)
	if err != nil {
		return err
	}
	rf, err := newRelationField(right, left, r.Right, r.Left.Cardinality)
	if err != nil {
		return err
	}
	l.reverse, rf.reverse = rf, l
	left.fields[l.name] = l
	right.fields[rf.name] = rf
	return nil
}

func newRelationField(owner, target *Composite, e End, other Cardinality) (*Field, error) {
	if err := checkFieldName(owner, e.Name); err != nil {
		return nil, entgraph.NewRelationError(owner.name, target.name, e.Name, "relation redefines field", err)
	}
	return &Field{
		name:        e.Name,
		kind:        KindOf(e.Cardinality, other),
		cardinality: e.Cardinality,
		from:        owner,
		target:      target,
		compare:     e.Compare,
		cascade:     e.CascadeDestroy,
	}, nil
}

func checkFieldName(c *Composite, name string) error {
	switch {
	case name == "":
		return entgraph.NewSchemaError(c.name, "", "missing field name", nil)
	case IsReserved(name):
		return entgraph.NewSchemaError(c.name, name, "cannot add field with reserved name", nil)
	}
	if _, ok := c.fields[name]; ok {
		return entgraph.NewSchemaError(c.name, name, "duplicate field", nil)
	}
	return nil
}

func refName(ref TypeRef) string {
	switch v := ref.(type) {
	case Named:
		return string(v)
	case Type:
		if v.registry() != nil {
			return v.Name()
		}
	}
	return ""
}
