package schema_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/entgraph"
	"github.com/syssam/entgraph/schema"
)

// TestKindOf tests relationship kind derivation from cardinality pairs.
func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		own, other schema.Cardinality
		want       schema.Kind
	}{
		{schema.One, schema.One, schema.O2O},
		{schema.Many, schema.One, schema.O2M},
		{schema.One, schema.Many, schema.M2O},
		{schema.Many, schema.Many, schema.M2M},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, schema.KindOf(tt.own, tt.other))
		})
	}
	assert.Equal(t, "scalar", schema.Attr.String())
	assert.Equal(t, "unknown", schema.Kind(42).String())
	assert.False(t, schema.Attr.IsRelation())
	assert.True(t, schema.M2M.IsRelation())
}

func TestParseCardinality(t *testing.T) {
	t.Parallel()

	c, ok := schema.ParseCardinality(" Many ")
	require.True(t, ok)
	assert.Equal(t, schema.Many, c)
	c, ok = schema.ParseCardinality("one")
	require.True(t, ok)
	assert.Equal(t, schema.One, c)
	_, ok = schema.ParseCardinality("several")
	assert.False(t, ok)
	assert.Equal(t, "invalid", schema.Cardinality(0).String())
}

// TestBuiltinScalars tests the validate and serialize functions of the
// standard scalars.
func TestBuiltinScalars(t *testing.T) {
	t.Parallel()

	s, err := schema.NewBuilder().Finalize(schema.Declarations{})
	require.NoError(t, err)
	scalar := func(name string) *schema.Scalar {
		sc, ok := s.Scalar(name)
		require.True(t, ok, name)
		return sc
	}

	t.Run("Key", func(t *testing.T) {
		key := scalar(schema.TypeKey)
		assert.True(t, key.Indexed())
		v, err := key.Validate("  one ")
		require.NoError(t, err)
		assert.Equal(t, "one", v)
		_, err = key.Validate(3)
		assert.EqualError(t, err, "expected non-empty string")
		_, err = key.Validate("   ")
		assert.Error(t, err)
		v, err = key.Validate("cafe\u0301")
		require.NoError(t, err)
		assert.Equal(t, "caf\u00e9", v)
	})

	t.Run("Text", func(t *testing.T) {
		text := scalar(schema.TypeText)
		assert.False(t, text.Indexed())
		_, err := text.Validate(1)
		assert.EqualError(t, err, "expected string")
	})

	t.Run("Bool", func(t *testing.T) {
		v, err := scalar(schema.TypeBool).Validate(false)
		require.NoError(t, err)
		assert.Equal(t, false, v)
		_, err = scalar(schema.TypeBool).Validate("false")
		assert.EqualError(t, err, "expected boolean")
	})

	t.Run("Num", func(t *testing.T) {
		num := scalar(schema.TypeNum)
		for _, in := range []any{3, int64(3), uint8(3), float32(3), 3.0, json.Number("3")} {
			v, err := num.Validate(in)
			require.NoError(t, err)
			assert.Equal(t, 3.0, v)
		}
		_, err := num.Validate("3")
		assert.Error(t, err)
		_, err = num.Validate(nil)
		assert.Error(t, err)
	})

	t.Run("Time", func(t *testing.T) {
		tm := scalar(schema.TypeTime)
		when := time.UnixMilli(1463375134532)
		v, err := tm.Validate(when)
		require.NoError(t, err)
		assert.Equal(t, "2016-05-16T05:05:34.532Z", tm.Serialize(v))
		v, err = tm.Validate("2016-05-16T05:05:34.532Z")
		require.NoError(t, err)
		assert.True(t, when.Equal(v.(time.Time)))
		_, err = tm.Validate("yesterday")
		assert.Error(t, err)
	})

	t.Run("Type", func(t *testing.T) {
		typ := scalar(schema.TypeType)
		v, err := typ.Validate("Text")
		require.NoError(t, err)
		assert.Equal(t, "Text", typ.Serialize(v))
		_, err = typ.Validate("Nope")
		assert.EqualError(t, err, "unknown type: Nope")
	})

	t.Run("UUID", func(t *testing.T) {
		u := scalar(schema.TypeUUID)
		id := uuid.New()
		v, err := u.Validate(id.String())
		require.NoError(t, err)
		assert.Equal(t, id, v)
		assert.Equal(t, id.String(), u.Serialize(v))
		_, err = u.Validate(42)
		assert.Error(t, err)
	})

	t.Run("Scalar", func(t *testing.T) {
		type foo struct{ bar int }
		v, err := scalar(schema.TypeScalar).Validate(foo{1})
		require.NoError(t, err)
		assert.Equal(t, foo{1}, v)
	})
}

func TestBuilderRegistration(t *testing.T) {
	t.Parallel()

	t.Run("duplicate_type", func(t *testing.T) {
		b := schema.NewBuilder()
		_, err := b.Entity("Thing")
		require.NoError(t, err)
		_, err = b.Trait("Thing")
		require.Error(t, err)
		assert.True(t, entgraph.IsSchemaError(err))
		_, err = b.Scalar("Text", nil, nil)
		assert.ErrorIs(t, err, entgraph.ErrInvalidSchema)
	})

	t.Run("extend_entity", func(t *testing.T) {
		b := schema.NewBuilder()
		base, err := b.Entity("Base")
		require.NoError(t, err)
		_, err = b.Entity("Derived", base)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "extends non-trait")
	})

	t.Run("extend_unknown", func(t *testing.T) {
		b := schema.NewBuilder()
		_, err := b.Trait("Derived", schema.Named("Missing"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown type: Missing")
	})

	t.Run("duplicate_super", func(t *testing.T) {
		b := schema.NewBuilder()
		p, err := b.Trait("Profile")
		require.NoError(t, err)
		_, err = b.Entity("User", p, schema.Named("Profile"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate super")
	})

	t.Run("after_finalize", func(t *testing.T) {
		b := schema.NewBuilder()
		_, err := b.Finalize(schema.Declarations{})
		require.NoError(t, err)
		_, err = b.Entity("Late")
		assert.ErrorIs(t, err, entgraph.ErrFinalized)
		_, err = b.Scalar("Late", nil, nil)
		assert.ErrorIs(t, err, entgraph.ErrFinalized)
		_, err = b.Finalize(schema.Declarations{})
		assert.ErrorIs(t, err, entgraph.ErrFinalized)
	})

	t.Run("foreign_handle", func(t *testing.T) {
		other := schema.NewBuilder()
		foreign, err := other.Trait("Foreign")
		require.NoError(t, err)
		b := schema.NewBuilder()
		_, err = b.Entity("Local", foreign)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "another schema")
	})
}

func TestFinalizeAttributes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		attrs func(thing *schema.Composite) []schema.Attribute
		err   string
	}{
		{
			name: "reserved_lid",
			attrs: func(thing *schema.Composite) []schema.Attribute {
				return []schema.Attribute{{Type: thing, Name: "lid", Scalar: schema.Named("Text")}}
			},
			err: "reserved name",
		},
		{
			name: "reserved_gid",
			attrs: func(thing *schema.Composite) []schema.Attribute {
				return []schema.Attribute{{Type: thing, Name: "gid", Scalar: schema.Named("Text")}}
			},
			err: "reserved name",
		},
		{
			name: "duplicate",
			attrs: func(thing *schema.Composite) []schema.Attribute {
				return []schema.Attribute{
					{Type: thing, Name: "x", Scalar: schema.Named("Text")},
					{Type: thing, Name: "x", Scalar: schema.Named("Num")},
				}
			},
			err: "duplicate field",
		},
		{
			name: "composite_attribute_type",
			attrs: func(thing *schema.Composite) []schema.Attribute {
				return []schema.Attribute{{Type: thing, Name: "x", Scalar: thing}}
			},
			err: "expected scalar",
		},
		{
			name: "unknown_owner",
			attrs: func(*schema.Composite) []schema.Attribute {
				return []schema.Attribute{{Type: schema.Named("Ghost"), Name: "x", Scalar: schema.Named("Text")}}
			},
			err: "unknown type: Ghost",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := schema.NewBuilder()
			thing, err := b.Entity("Thing")
			require.NoError(t, err)
			_, err = b.Finalize(schema.Declarations{Attributes: tt.attrs(thing)})
			require.Error(t, err)
			assert.True(t, entgraph.IsSchemaError(err))
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestFinalizeRelationships(t *testing.T) {
	t.Parallel()

	b := schema.NewBuilder()
	node, err := b.Entity("Node")
	require.NoError(t, err)
	user, err := b.Entity("User")
	require.NoError(t, err)
	likable, err := b.Trait("Likable")
	require.NoError(t, err)
	post, err := b.Entity("Post", likable)
	require.NoError(t, err)

	s, err := b.Finalize(schema.Declarations{
		Relationships: []schema.Relationship{
			{
				Left:  schema.End{Type: node, Cardinality: schema.Many, Name: "children", CascadeDestroy: true},
				Right: schema.End{Type: node, Cardinality: schema.One, Name: "parent"},
			},
			{
				Left:  schema.End{Type: node, Cardinality: schema.One, Name: "next"},
				Right: schema.End{Type: node, Cardinality: schema.One, Name: "prev"},
			},
			{
				Left:  schema.End{Type: user, Cardinality: schema.Many, Name: "likes"},
				Right: schema.End{Type: schema.Named("Likable"), Cardinality: schema.Many, Name: "likers"},
			},
		},
	})
	require.NoError(t, err)

	field := func(c *schema.Composite, name string) *schema.Field {
		f, ok := c.Field(name)
		require.True(t, ok, name)
		return f
	}

	children, parent := field(node, "children"), field(node, "parent")
	assert.Equal(t, schema.O2M, children.Kind())
	assert.Equal(t, schema.Many, children.Cardinality())
	assert.Equal(t, schema.M2O, parent.Kind())
	assert.Equal(t, schema.One, parent.Cardinality())
	assert.Same(t, parent, children.Reverse())
	assert.Same(t, children, children.Reverse().Reverse())
	assert.True(t, children.CascadeDestroy())
	assert.False(t, parent.CascadeDestroy())
	assert.Same(t, node, children.Target())
	assert.Equal(t, schema.Type(node), children.Type())

	next := field(node, "next")
	assert.Equal(t, schema.O2O, next.Kind())
	assert.Equal(t, schema.O2O, next.Reverse().Kind())

	likes := field(user, "likes")
	assert.Equal(t, schema.M2M, likes.Kind())
	assert.Equal(t, schema.M2M, likes.Reverse().Kind())

	// Trait fields are visible on implementing entities, defined by the trait.
	likers := field(post, "likers")
	assert.Same(t, likable, likers.From())
	assert.Equal(t, "Likable.likers", likers.String())

	// Entity trait fields are flattened into every entity.
	lid := field(post, schema.FieldLID)
	assert.Same(t, s.Entity(), lid.From())
	assert.True(t, post.Implements(s.Entity()))
	assert.True(t, post.Implements(likable))
	assert.False(t, user.Implements(likable))

	names := make([]string, 0)
	for _, f := range node.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"children", "lid", "next", "parent", "prev", "type"}, names)
}

func TestFinalizeRelationshipErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rel  schema.Relationship
		err  string
	}{
		{
			name: "unknown_endpoint",
			rel: schema.Relationship{
				Left:  schema.End{Type: schema.Named("Node"), Cardinality: schema.One, Name: "a"},
				Right: schema.End{Type: schema.Named("Ghost"), Cardinality: schema.One, Name: "b"},
			},
			err: "unknown type: Ghost",
		},
		{
			name: "scalar_endpoint",
			rel: schema.Relationship{
				Left:  schema.End{Type: schema.Named("Node"), Cardinality: schema.One, Name: "a"},
				Right: schema.End{Type: schema.Named("Text"), Cardinality: schema.One, Name: "b"},
			},
			err: "expected composite type",
		},
		{
			name: "missing_cardinality",
			rel: schema.Relationship{
				Left:  schema.End{Type: schema.Named("Node"), Name: "a"},
				Right: schema.End{Type: schema.Named("Node"), Cardinality: schema.One, Name: "b"},
			},
			err: "invalid cardinality",
		},
		{
			name: "reserved_name",
			rel: schema.Relationship{
				Left:  schema.End{Type: schema.Named("Node"), Cardinality: schema.One, Name: "type"},
				Right: schema.End{Type: schema.Named("Node"), Cardinality: schema.One, Name: "b"},
			},
			err: "reserved name",
		},
		{
			name: "redefines_attribute",
			rel: schema.Relationship{
				Left:  schema.End{Type: schema.Named("Node"), Cardinality: schema.One, Name: "label"},
				Right: schema.End{Type: schema.Named("Node"), Cardinality: schema.One, Name: "b"},
			},
			err: "relation redefines field",
		},
		{
			name: "self_reverse",
			rel: schema.Relationship{
				Left:  schema.End{Type: schema.Named("Node"), Cardinality: schema.Many, Name: "peers"},
				Right: schema.End{Type: schema.Named("Node"), Cardinality: schema.Many, Name: "peers"},
			},
			err: "own reverse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := schema.NewBuilder()
			_, err := b.Entity("Node")
			require.NoError(t, err)
			_, err = b.Finalize(schema.Declarations{
				Attributes:    []schema.Attribute{{Type: schema.Named("Node"), Name: "label", Scalar: schema.Named("Text")}},
				Relationships: []schema.Relationship{tt.rel},
			})
			require.Error(t, err)
			assert.True(t, errors.Is(err, entgraph.ErrInvalidRelation) || errors.Is(err, entgraph.ErrInvalidSchema))
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestFlattenConflict(t *testing.T) {
	t.Parallel()

	b := schema.NewBuilder()
	named, err := b.Trait("Named")
	require.NoError(t, err)
	titled, err := b.Trait("Titled")
	require.NoError(t, err)
	_, err = b.Entity("Book", named, titled)
	require.NoError(t, err)

	_, err = b.Finalize(schema.Declarations{
		Attributes: []schema.Attribute{
			{Type: named, Name: "name", Scalar: schema.Named("Text")},
			{Type: titled, Name: "name", Scalar: schema.Named("Text")},
		},
	})
	require.Error(t, err)
	assert.True(t, entgraph.IsSchemaError(err))
	assert.Contains(t, err.Error(), "field name conflicts between")
	assert.Contains(t, err.Error(), "Named")
	assert.Contains(t, err.Error(), "Titled")
}

func TestFlattenDiamond(t *testing.T) {
	t.Parallel()

	b := schema.NewBuilder()
	profile, err := b.Trait("Profile")
	require.NoError(t, err)
	content, err := b.Trait("Content", profile)
	require.NoError(t, err)
	network, err := b.Entity("Network", content, profile)
	require.NoError(t, err)

	_, err = b.Finalize(schema.Declarations{
		Attributes: schema.Attrs(profile, map[string]schema.TypeRef{
			"name":  schema.Named("Text"),
			"about": schema.Named("Text"),
		}),
	})
	require.NoError(t, err)

	f, ok := network.Field("name")
	require.True(t, ok)
	assert.Same(t, profile, f.From())
	assert.Len(t, network.LocalFields(), 0)
	assert.Len(t, network.Fields(), 4)
}

func TestSchemaResolve(t *testing.T) {
	t.Parallel()

	b := schema.NewBuilder()
	thing, err := b.Entity("Thing")
	require.NoError(t, err)
	trait, err := b.Trait("Tagged")
	require.NoError(t, err)
	s, err := b.Finalize(schema.Declarations{
		Attributes: []schema.Attribute{{Type: thing, Name: "key", Scalar: schema.Named("Key")}},
	})
	require.NoError(t, err)

	got, err := s.Resolve("Thing")
	require.NoError(t, err)
	assert.Equal(t, schema.Type(thing), got)
	got, err = s.Resolve(schema.Named("Thing"))
	require.NoError(t, err)
	assert.Equal(t, schema.Type(thing), got)
	_, err = s.Resolve(12)
	assert.Error(t, err)

	e, err := s.ResolveEntity(thing)
	require.NoError(t, err)
	assert.Same(t, thing, e)
	_, err = s.ResolveEntity(trait)
	assert.EqualError(t, err, "not an entity type: Tagged")
	_, err = s.ResolveEntity("Text")
	assert.Error(t, err)

	indexed := s.IndexedFields()
	require.Len(t, indexed, 1)
	assert.Equal(t, "Thing.key", indexed[0].String())

	c, ok := s.Composite("Tagged")
	require.True(t, ok)
	assert.True(t, c.IsTrait())
	_, ok = s.Composite("Text")
	assert.False(t, ok)
	assert.NotEmpty(t, s.Types())
}

type acc struct {
	lid    string
	values map[string]any
}

func (a acc) LID() string { return a.lid }

func (a acc) Value(name string) (any, bool) {
	v, ok := a.values[name]
	return v, ok
}

func TestByAttribute(t *testing.T) {
	t.Parallel()

	byIndex := schema.ByAttribute("index")
	one := acc{lid: "b", values: map[string]any{"index": 1.0}}
	two := acc{lid: "a", values: map[string]any{"index": 2.0}}
	none := acc{lid: "c"}

	assert.Negative(t, byIndex(one, two))
	assert.Positive(t, byIndex(two, one))
	assert.Negative(t, byIndex(none, one))
	assert.Zero(t, byIndex(none, none))
	assert.Negative(t, schema.ByLID(two, one))

	byName := schema.ByAttribute("name")
	x := acc{lid: "x", values: map[string]any{"name": "alpha"}}
	y := acc{lid: "y", values: map[string]any{"name": "beta"}}
	assert.Negative(t, byName(x, y))
}
