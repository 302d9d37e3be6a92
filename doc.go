// Package entgraph is an embedded, in-memory, schema-typed entity-graph store.
//
// A schema is declared once with a [schema.Builder] and frozen by Finalize.
// A [graph.Store] bound to that schema then holds typed records keyed by
// their local identifier (lid) and keeps every relationship bidirectional:
//
//	b := schema.NewBuilder()
//	node, _ := b.Entity("Node")
//	s, err := b.Finalize(schema.Declarations{
//	    Relationships: []schema.Relationship{{
//	        Left:  schema.End{Type: node, Cardinality: schema.Many, Name: "children", CascadeDestroy: true},
//	        Right: schema.End{Type: node, Cardinality: schema.One, Name: "parent"},
//	    }},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	g := graph.New(s)
//	g.Put(graph.Literal{
//	    "lid":  "root",
//	    "type": "Node",
//	    "children": []graph.Literal{
//	        {"lid": "a", "type": "Node"},
//	    },
//	})
//	p, ok := g.Get("a", graph.WithDepth(2))
//
// This package holds the error types shared by the schema and graph packages.
// Schema definition errors are returned synchronously from the builder;
// record-level problems at runtime are delivered to the store's
// [graph.Reporter] and never abort the surrounding call.
package entgraph
