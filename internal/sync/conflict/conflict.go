// Package conflict implements timestamp-based conflict resolution between a
// local and a remote version of the same row. It is pure: no I/O, no state
// beyond the chosen strategy.
package conflict

import (
	"time"

	"familystock/internal/wire"
)

// Strategy selects how a detected conflict is resolved.
type Strategy int

const (
	// LastWriteWins picks the version with the later revision timestamp.
	LastWriteWins Strategy = iota
	// Manual is reserved for interactive resolution. No interactive flow
	// exists yet, so it currently behaves exactly like LastWriteWins.
	Manual
)

// Resolver compares row revisions. The zero value uses LastWriteWins.
type Resolver struct {
	strategy Strategy
}

func NewResolver(s Strategy) Resolver {
	return Resolver{strategy: s}
}

// HasConflict reports whether the stored remote revision is strictly newer
// than the outgoing local one. Equal timestamps are not a conflict.
func (r Resolver) HasConflict(local, remote time.Time) bool {
	return remote.After(local)
}

// Resolve returns the winning version. Ties go to local, so a record pushed
// and immediately pushed again does not bounce back to its previous state.
// Clock skew between writers is tolerated: only the timestamps are compared,
// never the wall clock of the resolving process.
func Resolve[R wire.Row](r Resolver, local, remote R) R {
	// Manual falls through to last-write-wins until an interactive
	// resolution flow exists.
	if remote.Revision().After(local.Revision()) {
		return remote
	}
	return local
}
