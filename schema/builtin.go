package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Names of the built-in types registered by every Builder.
const (
	TypeKey    = "Key"
	TypeText   = "Text"
	TypeBool   = "Bool"
	TypeNum    = "Num"
	TypeTime   = "Time"
	TypeType   = "Type"
	TypeScalar = "Scalar"
	TypeUUID   = "UUID"
	TypeEntity = "Entity"
)

// Names of the fields contributed by the Entity trait.
const (
	FieldLID  = "lid"
	FieldType = "type"
)

// reserved field names cannot be declared by attributes or relationships.
var reserved = map[string]bool{
	FieldLID:  true,
	"gid":     true,
	FieldType: true,
}

// IsReserved reports whether name is reserved for identity fields.
func IsReserved(name string) bool { return reserved[name] }

// isoMillis is the ISO-8601 layout used to serialize Time values.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

func typeOf(name string, ok func(any) bool) ValidateFunc {
	return func(x any) (any, error) {
		if !ok(x) {
			return nil, fmt.Errorf("expected %s", name)
		}
		return x, nil
	}
}

// validateKey trims keys and puts them in Unicode NFC so that equal text
// always finds the same index entry.
func validateKey(x any) (any, error) {
	s, ok := x.(string)
	if s = strings.TrimSpace(s); !ok || s == "" {
		return nil, errors.New("expected non-empty string")
	}
	return norm.NFC.String(s), nil
}

func validateNum(x any) (any, error) {
	if n, ok := x.(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("expected number: %w", err)
		}
		return f, nil
	}
	v := reflect.ValueOf(x)
	switch {
	case v.CanFloat():
		return v.Float(), nil
	case v.CanInt():
		return float64(v.Int()), nil
	case v.CanUint():
		return float64(v.Uint()), nil
	}
	return nil, errors.New("expected number")
}

func validateTime(x any) (any, error) {
	switch v := x.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v != nil {
			return *v, nil
		}
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil, fmt.Errorf("expected time: %w", err)
		}
		return t, nil
	}
	return nil, errors.New("expected time")
}

func serializeTime(x any) any {
	t, ok := x.(time.Time)
	if !ok {
		return x
	}
	return t.UTC().Format(isoMillis)
}

func validateUUID(x any) (any, error) {
	switch v := x.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	case []byte:
		return uuid.FromBytes(v)
	}
	return nil, errors.New("expected uuid")
}

func serializeUUID(x any) any {
	if u, ok := x.(uuid.UUID); ok {
		return u.String()
	}
	return x
}

func serializeType(x any) any {
	if t, ok := x.(Type); ok {
		return t.Name()
	}
	return x
}

// registerBuiltins defines the standard scalars and the Entity trait.
func (b *Builder) registerBuiltins() {
	scalars := []struct {
		name      string
		validate  ValidateFunc
		serialize SerializeFunc
		opts      []ScalarOption
	}{
		{TypeKey, validateKey, nil, []ScalarOption{Indexed()}},
		{TypeText, typeOf("string", func(x any) bool { _, ok := x.(string); return ok }), nil, nil},
		{TypeBool, typeOf("boolean", func(x any) bool { _, ok := x.(bool); return ok }), nil, nil},
		{TypeNum, validateNum, nil, nil},
		{TypeTime, validateTime, serializeTime, nil},
		{TypeType, func(x any) (any, error) { return b.reg.coerce(x) }, serializeType, nil},
		{TypeScalar, nil, nil, nil},
		{TypeUUID, validateUUID, serializeUUID, []ScalarOption{Indexed()}},
	}
	for _, s := range scalars {
		sc := &Scalar{reg: b.reg, name: s.name, validate: s.validate, serialize: s.serialize}
		for _, opt := range s.opts {
			opt(sc)
		}
		b.reg.add(sc)
	}
	entity, _ := newComposite(b.reg, TypeEntity, false, nil)
	text := b.reg.types[TypeText].(*Scalar)
	typ := b.reg.types[TypeType].(*Scalar)
	entity.fields[FieldLID] = &Field{name: FieldLID, kind: Attr, cardinality: One, from: entity, scalar: text}
	entity.fields[FieldType] = &Field{name: FieldType, kind: Attr, cardinality: One, from: entity, scalar: typ}
	b.reg.add(entity)
	b.entity = entity
}
