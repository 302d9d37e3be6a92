package graph_test

import (
	"maps"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/entgraph/graph"
	"github.com/syssam/entgraph/schema"
)

// testSchema declares:
//
//	trait Named { handle: Key }
//	entity Node (Named) { name: Text, index: Num }
//	entity Person (Named) {}
//	entity Thing { known: Text, code: UUID, seen: Time }
//
//	Node.children (many, by index, cascade) <-> Node.parent (one)
//	Node.next (one) <-> Node.prev (one)
//	Node.q (one, cascade) <-> Node.qs (many)
//	Node.peers (many) <-> Node.peerOf (many)
//	Person.pet (one) <-> Thing.owner (one)
func testSchema(t testing.TB) *schema.Schema {
	t.Helper()
	b := schema.NewBuilder()
	named, err := b.Trait("Named")
	require.NoError(t, err)
	node, err := b.Entity("Node", named)
	require.NoError(t, err)
	person, err := b.Entity("Person", named)
	require.NoError(t, err)
	thing, err := b.Entity("Thing")
	require.NoError(t, err)

	var attrs []schema.Attribute
	attrs = append(attrs, schema.Attrs(named, map[string]schema.TypeRef{
		"handle": schema.Named(schema.TypeKey),
	})...)
	attrs = append(attrs, schema.Attrs(node, map[string]schema.TypeRef{
		"name":  schema.Named(schema.TypeText),
		"index": schema.Named(schema.TypeNum),
	})...)
	attrs = append(attrs, schema.Attrs(thing, map[string]schema.TypeRef{
		"known": schema.Named(schema.TypeText),
		"code":  schema.Named(schema.TypeUUID),
		"seen":  schema.Named(schema.TypeTime),
	})...)

	s, err := b.Finalize(schema.Declarations{
		Attributes: attrs,
		Relationships: []schema.Relationship{
			{
				Left:  schema.End{Type: node, Cardinality: schema.Many, Name: "children", Compare: schema.ByAttribute("index"), CascadeDestroy: true},
				Right: schema.End{Type: node, Cardinality: schema.One, Name: "parent"},
			},
			{
				Left:  schema.End{Type: node, Cardinality: schema.One, Name: "next"},
				Right: schema.End{Type: node, Cardinality: schema.One, Name: "prev"},
			},
			{
				Left:  schema.End{Type: node, Cardinality: schema.One, Name: "q", CascadeDestroy: true},
				Right: schema.End{Type: node, Cardinality: schema.Many, Name: "qs"},
			},
			{
				Left:  schema.End{Type: node, Cardinality: schema.Many, Name: "peers"},
				Right: schema.End{Type: node, Cardinality: schema.Many, Name: "peerOf"},
			},
			{
				Left:  schema.End{Type: person, Cardinality: schema.One, Name: "pet"},
				Right: schema.End{Type: thing, Cardinality: schema.One, Name: "owner"},
			},
		},
	})
	require.NoError(t, err)
	return s
}

// newStore returns a store over testSchema recording its diagnostics.
func newStore(t testing.TB, opts ...graph.Option) (*graph.Store, *graph.Recorder) {
	t.Helper()
	rec := &graph.Recorder{}
	opts = append([]graph.Option{graph.WithReporter(rec)}, opts...)
	return graph.New(testSchema(t), opts...), rec
}

// nodeView is the serialized projection of a Node with every field unset,
// overridden by set.
func nodeView(lid string, set map[string]any) graph.Projection {
	p := graph.Projection{
		"lid":      lid,
		"type":     "Node",
		"handle":   nil,
		"name":     nil,
		"index":    nil,
		"parent":   nil,
		"next":     nil,
		"prev":     nil,
		"q":        nil,
		"children": []graph.Projection{},
		"qs":       []graph.Projection{},
		"peers":    []graph.Projection{},
		"peerOf":   []graph.Projection{},
	}
	maps.Copy(p, set)
	return p
}

func stub(lid string) graph.Projection {
	return graph.Projection{"lid": lid}
}

func lids(records []*graph.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.LID()
	}
	return out
}

func projLIDs(v any) []string {
	list, _ := v.([]graph.Projection)
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.LID()
	}
	return out
}

// requireConsistent checks that every link is live and mirrored by its
// reverse field.
func requireConsistent(t *testing.T, s *graph.Store) {
	t.Helper()
	for _, lid := range s.LIDs() {
		r, ok := s.Record(lid)
		require.True(t, ok)
		for _, f := range r.Type().Fields() {
			if !f.Kind().IsRelation() {
				continue
			}
			var related []*graph.Record
			if f.Cardinality() == schema.One {
				if other, ok := r.Ref(f.Name()); ok {
					related = append(related, other)
				}
			} else {
				related = r.Refs(f.Name())
			}
			for _, other := range related {
				live, ok := s.Record(other.LID())
				require.Truef(t, ok && live == other, "%s.%s points at dead record %s", lid, f.Name(), other.LID())
				rev := f.Reverse()
				if rev.Cardinality() == schema.One {
					back, _ := other.Ref(rev.Name())
					require.Samef(t, r, back, "%s.%s does not point back at %s", other.LID(), rev.Name(), lid)
				} else {
					require.Containsf(t, lids(other.Refs(rev.Name())), lid, "%s.%s does not contain %s", other.LID(), rev.Name(), lid)
				}
			}
		}
	}
}
