// Package graph is an in-memory store of records typed by a finalized
// schema.
//
// Records are identified by a caller-chosen lid and hold scalar values and
// links to other records. Every link is stored on both ends, so following
// a relationship field and its reverse always agree.
//
// # Writing
//
// Put takes a nested literal and upserts it recursively:
//
//	store.Put(graph.Literal{
//	    "lid":  "root",
//	    "type": "Node",
//	    "name": "root",
//	    "children": []graph.Literal{
//	        {"lid": "a", "type": "Node", "index": 1},
//	        {"lid": "b", "type": "Node", "index": 2},
//	    },
//	})
//
// A nested literal that names an existing lid updates that record; only
// new records need a "type". Remove severs a single link and Destroy
// deletes a record, following fields declared with CascadeDestroy.
//
// # Reading
//
// Get and Lookup return a Projection, a tree of plain maps. Cycles and
// the depth bound cut the tree with {"lid": ...} stubs:
//
//	p, ok := store.Get("root", graph.WithDepth(2), graph.WithSerialize(true))
//
// # Diagnostics
//
// Problems in a literal never abort a Put. They are delivered to the
// store's Reporter as Diagnostic values carrying a typed entgraph error,
// and the offending field or nested record is skipped. The default
// reporter logs with log/slog; ZapReporter and Recorder are also
// provided.
//
// A Store is not safe for concurrent use; see Synchronized.
package graph
