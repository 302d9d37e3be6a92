// Package schema provides the type system of an entgraph store.
//
// A schema is built in two phases. A [Builder] accumulates scalar, trait
// and entity declarations; [Builder.Finalize] attaches attribute and
// relationship fields, flattens every composite's field table and returns
// an immutable [Schema].
//
// # Types
//
//   - [Scalar]: an opaque value type with a validate and a serialize function.
//   - [Composite]: a trait or an entity. Traits are abstract and may extend
//     other traits. Entities extend traits and implicitly the built-in
//     Entity trait, which contributes the "lid" and "type" fields.
//
// Built-in scalars:
//
//	Key     non-empty trimmed string in NFC, unique-indexed
//	Text    string
//	Bool    bool
//	Num     any Go number, stored as float64
//	Time    time.Time or RFC 3339 string, serialized as ISO-8601 UTC
//	Type    a type of this schema, serialized as its name
//	Scalar  any value
//	UUID    uuid.UUID or its string form, unique-indexed
//
// # Relationships
//
// A relationship declares one field on each side. A field's kind is
// derived from its own cardinality and the cardinality of its reverse:
//
//	own   other  kind
//	one   one    O2O
//	many  one    O2M  (this side holds the collection)
//	one   many   M2O
//	many  many   M2M
//
// For example:
//
//	b := schema.NewBuilder()
//	node, _ := b.Entity("Node")
//	s, err := b.Finalize(schema.Declarations{
//	    Attributes: schema.Attrs(node, map[string]schema.TypeRef{
//	        "index": schema.Named(schema.TypeNum),
//	    }),
//	    Relationships: []schema.Relationship{{
//	        Left:  schema.End{Type: node, Cardinality: schema.One, Name: "parent"},
//	        Right: schema.End{Type: node, Cardinality: schema.Many, Name: "children",
//	            Compare: schema.ByAttribute("index"), CascadeDestroy: true},
//	    }},
//	})
//
// # Flattening
//
// Finalize merges each type's local fields with the flattened fields of
// all its supertypes. Two distinct definitions of the same field name on
// one type fail finalize with an error naming both defining types.
package schema
