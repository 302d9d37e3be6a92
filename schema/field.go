package schema

import (
	"cmp"
	"strings"
	"time"
)

// Kind is the shape of a field. The four relationship kinds are named
// from the perspective of the field's owner.
type Kind int

// Field kinds.
const (
	Attr Kind = iota // Scalar attribute.
	O2O              // One to one: singular on both sides.
	O2M              // One to many: this side holds the collection.
	M2O              // Many to one: this side holds one member of the other's collection.
	M2M              // Many to many: collections on both sides.
)

// String returns the kind name.
func (k Kind) String() string {
	s := "unknown"
	switch k {
	case Attr:
		s = "scalar"
	case O2O:
		s = "oneToOne"
	case O2M:
		s = "oneToMany"
	case M2O:
		s = "manyToOne"
	case M2M:
		s = "manyToMany"
	}
	return s
}

// IsRelation reports whether the kind links two records.
func (k Kind) IsRelation() bool { return k >= O2O && k <= M2M }

// Cardinality is the number of values one side of a relationship holds.
type Cardinality int

// Cardinalities. The zero value is invalid.
const (
	One Cardinality = iota + 1
	Many
)

// String returns "one" or "many".
func (c Cardinality) String() string {
	switch c {
	case One:
		return "one"
	case Many:
		return "many"
	}
	return "invalid"
}

// ParseCardinality parses "one" or "many".
func ParseCardinality(s string) (Cardinality, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one":
		return One, true
	case "many":
		return Many, true
	}
	return 0, false
}

// KindOf derives a field's kind from its own cardinality and the
// cardinality of its reverse field.
func KindOf(own, other Cardinality) Kind {
	switch {
	case own == One && other == One:
		return O2O
	case own == Many && other == One:
		return O2M
	case own == One && other == Many:
		return M2O
	default:
		return M2M
	}
}

type (
	// Accessor is the read view of a record handed to compare functions.
	Accessor interface {
		// LID returns the record's local identifier.
		LID() string
		// Value returns the stored scalar value of the named field.
		Value(name string) (any, bool)
	}

	// CompareFunc orders members of a many-cardinality field. It returns
	// a negative number when a sorts before b, zero when they are equal,
	// and a positive number otherwise.
	CompareFunc func(a, b Accessor) int
)

// ByLID orders records by lid ascending.
func ByLID(a, b Accessor) int {
	return strings.Compare(a.LID(), b.LID())
}

// ByAttribute orders records by a scalar attribute. Records missing the
// attribute sort first. Numbers, strings, booleans and times are compared
// by value; other values compare equal.
func ByAttribute(name string) CompareFunc {
	return func(a, b Accessor) int {
		x, xok := a.Value(name)
		y, yok := b.Value(name)
		switch {
		case !xok && !yok:
			return 0
		case !xok:
			return -1
		case !yok:
			return 1
		}
		return compareValues(x, y)
	}
}

func compareValues(x, y any) int {
	switch x := x.(type) {
	case float64:
		if y, ok := y.(float64); ok {
			return cmp.Compare(x, y)
		}
	case string:
		if y, ok := y.(string); ok {
			return strings.Compare(x, y)
		}
	case bool:
		if y, ok := y.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case time.Time:
		if y, ok := y.(time.Time); ok {
			return x.Compare(y)
		}
	}
	return 0
}

// Field is a field definition. Fields are created during finalize and
// never change afterwards.
type Field struct {
	name        string
	kind        Kind
	cardinality Cardinality
	from        *Composite
	scalar      *Scalar
	target      *Composite
	reverse     *Field
	compare     CompareFunc
	cascade     bool
}

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// Kind returns the field kind.
func (f *Field) Kind() Kind { return f.kind }

// Cardinality returns the field's cardinality. Scalars are always One.
func (f *Field) Cardinality() Cardinality { return f.cardinality }

// From returns the type on which the field was defined.
func (f *Field) From() *Composite { return f.from }

// Scalar returns the attribute type, or nil for relationships.
func (f *Field) Scalar() *Scalar { return f.scalar }

// Target returns the related type, or nil for scalar attributes.
func (f *Field) Target() *Composite { return f.target }

// Type returns the attribute's scalar type or the related composite type.
func (f *Field) Type() Type {
	if f.kind == Attr {
		return f.scalar
	}
	return f.target
}

// Reverse returns the paired field on the other side of a relationship.
func (f *Field) Reverse() *Field { return f.reverse }

// CascadeDestroy reports whether destroying the owner destroys the
// records related along this field.
func (f *Field) CascadeDestroy() bool { return f.cascade }

// Compare orders two members of this field. Ties fall back to lid order.
func (f *Field) Compare(a, b Accessor) int {
	if f.compare != nil {
		if c := f.compare(a, b); c != 0 {
			return c
		}
	}
	return ByLID(a, b)
}

// Indexed reports whether the field feeds a unique index.
func (f *Field) Indexed() bool {
	return f.kind == Attr && f.scalar.Indexed()
}

// String returns Type.field.
func (f *Field) String() string {
	return f.from.name + "." + f.name
}
