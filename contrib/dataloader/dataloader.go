// Package dataloader adapts graph stores to batch loading.
//
// The batch functions built here have the signature expected by generic
// DataLoader implementations such as github.com/graph-gophers/dataloader/v7
// or github.com/vikstrous/dataloadgen:
//
//	ss := graph.Synchronized(store)
//	byLID := dataloader.FromStore(ss, graph.WithDepth(2), graph.WithSerialize(true))
//	byHandle := dataloader.FromLookup[string](ss, "User", "handle")
//
// Results always have one entry per requested key, in request order;
// missing records yield ErrNotFound at the same position.
package dataloader

import (
	"context"
	"errors"

	"github.com/syssam/entgraph/graph"
)

// ErrNotFound is returned for a key that matched no live record.
var ErrNotFound = errors.New("dataloader: record not found")

// KeyFunc extracts a key from a loaded value.
type KeyFunc[K comparable, V any] func(V) K

// BatchFunc loads a batch of values by their keys.
type BatchFunc[K comparable, V any] func(ctx context.Context, keys []K) ([]V, []error)

type (
	// Getter reads records by lid. *graph.Store and *graph.SyncStore
	// implement it; only the latter is safe under concurrent loaders.
	Getter interface {
		Get(lid string, opts ...graph.GetOption) (graph.Projection, bool)
	}

	// Finder reads records by an indexed attribute.
	Finder interface {
		Lookup(typ any, attr string, value any, opts ...graph.GetOption) (graph.Projection, bool)
	}
)

// FromStore returns a batch function projecting records by lid.
func FromStore(g Getter, opts ...graph.GetOption) BatchFunc[string, graph.Projection] {
	return func(ctx context.Context, lids []string) ([]graph.Projection, []error) {
		return load(ctx, lids, func(lid string) (graph.Projection, bool) {
			return g.Get(lid, opts...)
		})
	}
}

// FromLookup returns a batch function projecting records of type typ by
// the value of the indexed attribute attr.
func FromLookup[K comparable](f Finder, typ any, attr string, opts ...graph.GetOption) BatchFunc[K, graph.Projection] {
	return func(ctx context.Context, keys []K) ([]graph.Projection, []error) {
		return load(ctx, keys, func(key K) (graph.Projection, bool) {
			return f.Lookup(typ, attr, key, opts...)
		})
	}
}

func load[K comparable](ctx context.Context, keys []K, get func(K) (graph.Projection, bool)) ([]graph.Projection, []error) {
	result := make([]graph.Projection, len(keys))
	errs := make([]error, len(keys))
	// Repeated keys are read once.
	seen := make(map[K]int, len(keys))
	for i, key := range keys {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}
		if j, ok := seen[key]; ok {
			result[i], errs[i] = result[j], errs[j]
			continue
		}
		seen[key] = i
		if p, ok := get(key); ok {
			result[i] = p
		} else {
			errs[i] = ErrNotFound
		}
	}
	return result, errs
}

// OrderByKeys reorders values to match the requested keys. Keys with no
// value get the zero value and ErrNotFound.
//
//	ordered, errs := dataloader.OrderByKeys(lids, projections, graph.Projection.LID)
func OrderByKeys[K comparable, V any](keys []K, values []V, keyFn KeyFunc[K, V]) ([]V, []error) {
	byKey := make(map[K]V, len(values))
	for _, v := range values {
		byKey[keyFn(v)] = v
	}
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		v, ok := byKey[key]
		if !ok {
			errs[i] = ErrNotFound
			continue
		}
		result[i] = v
	}
	return result, errs
}

// GroupByKey groups values sharing a key, keeping their relative order.
// Grouping child projections by their parent's lid is the usual case.
func GroupByKey[K comparable, V any](values []V, keyFn KeyFunc[K, V]) map[K][]V {
	groups := make(map[K][]V)
	for _, v := range values {
		k := keyFn(v)
		groups[k] = append(groups[k], v)
	}
	return groups
}

// ParentLID returns a KeyFunc reading the lid of the record a projection
// links to through the singular field name. Projections without that link
// get the empty key.
func ParentLID(name string) KeyFunc[string, graph.Projection] {
	return func(p graph.Projection) string {
		parent, _ := p[name].(graph.Projection)
		return parent.LID()
	}
}

type ctxKey struct{}

// WithLoaders stores a request's loaders in ctx.
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For returns the loaders stored by WithLoaders, or the zero value.
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}
