package graph

import "log/slog"

type config struct {
	reporter  Reporter
	depth     int
	serialize bool
	stats     *Stats
}

// Option configures a Store.
type Option func(*config)

// WithReporter sets the diagnostics sink. The default logs to
// slog.Default().
func WithReporter(r Reporter) Option {
	return func(c *config) {
		if r != nil {
			c.reporter = r
		}
	}
}

// WithLogger reports diagnostics to the given slog.Logger.
// This is a convenience wrapper around WithReporter.
func WithLogger(logger *slog.Logger) Option {
	return WithReporter(SlogReporter(logger))
}

// WithDefaultDepth sets the projection depth used when a read does not
// pass WithDepth. Zero or a negative value means unbounded, the default.
func WithDefaultDepth(n int) Option {
	return func(c *config) {
		c.depth = n
	}
}

// WithSerializeDefault sets whether reads serialize scalars when they do
// not pass WithSerialize.
func WithSerializeDefault(on bool) Option {
	return func(c *config) {
		c.serialize = on
	}
}

// WithStats makes the store count its operations into s, which may be
// shared between stores.
func WithStats(s *Stats) Option {
	return func(c *config) {
		if s != nil {
			c.stats = s
		}
	}
}

type readConfig struct {
	depth     int
	serialize bool
}

// GetOption configures a single Get or Lookup.
type GetOption func(*readConfig)

// WithDepth bounds the projection depth. Depth 1 expands only the root
// record; its related records are reduced to their lid. Zero or a
// negative value means unbounded.
func WithDepth(n int) GetOption {
	return func(c *readConfig) {
		c.depth = n
	}
}

// WithSerialize passes scalar values through their type's serialize
// function, producing a JSON-safe projection. When off, stored values are
// returned unchanged.
func WithSerialize(on bool) GetOption {
	return func(c *readConfig) {
		c.serialize = on
	}
}
