package graph

import (
	"reflect"
	"sort"

	"github.com/syssam/entgraph/schema"
)

// Literal is the input of Put: a record-shaped value with a required
// "lid", an optional "type" (required when the lid is new) and any number
// of field values. Relationship values are themselves literals for
// singular fields, or sequences of literals for collection fields.
//
// Maps decoded from JSON or YAML can be passed as literals directly.
// A Projection returned by Get is also a valid literal.
type Literal map[string]any

// Ref returns a literal that refers to an existing record by lid.
func Ref(lid string) Literal {
	return Literal{schema.FieldLID: lid}
}

func asLiteral(x any) (Literal, bool) {
	switch v := x.(type) {
	case Literal:
		return v, v != nil
	case Projection:
		return Literal(v), v != nil
	case map[string]any:
		return Literal(v), v != nil
	case *Record:
		if v == nil {
			return nil, false
		}
		return Ref(v.lid), true
	}
	return nil, false
}

// asList unpacks any slice or array of literals.
func asList(x any) ([]any, bool) {
	switch v := x.(type) {
	case []any:
		return v, true
	case []Literal:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	rv := reflect.ValueOf(x)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func (l Literal) sortedKeys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
