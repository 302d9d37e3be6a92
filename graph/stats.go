package graph

import (
	"fmt"
	"sync/atomic"
)

// Stats holds store operation counters.
type Stats struct {
	// Puts is the number of top-level Put calls.
	Puts atomic.Int64
	// Creates is the number of records created, including nested ones.
	Creates atomic.Int64
	// Destroys is the number of records destroyed, including cascades.
	Destroys atomic.Int64
	// Removes is the number of links severed by Remove.
	Removes atomic.Int64
	// Diagnostics is the number of problems reported.
	Diagnostics atomic.Int64
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Puts:        s.Puts.Load(),
		Creates:     s.Creates.Load(),
		Destroys:    s.Destroys.Load(),
		Removes:     s.Removes.Load(),
		Diagnostics: s.Diagnostics.Load(),
	}
}

// Reset resets all counters to zero.
func (s *Stats) Reset() {
	s.Puts.Store(0)
	s.Creates.Store(0)
	s.Destroys.Store(0)
	s.Removes.Store(0)
	s.Diagnostics.Store(0)
}

// StatsSnapshot is a point-in-time snapshot of store statistics.
type StatsSnapshot struct {
	Puts        int64
	Creates     int64
	Destroys    int64
	Removes     int64
	Diagnostics int64
}

// String returns a human-readable summary of the statistics.
func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"puts=%d creates=%d destroys=%d removes=%d diagnostics=%d",
		s.Puts, s.Creates, s.Destroys, s.Removes, s.Diagnostics,
	)
}
