package update

import "context"

// Log is the append-only event store every StateUpdate is durably recorded
// to. Scan must return rows ordered by Created descending (most recent
// first) and stop as soon as it has included the first StateSnapshot it
// encounters, matching the teacher's replay query: a snapshot summarizes
// every update before it, so nothing older needs to be read.
type Log interface {
	// Append persists body with the current wall-clock time and returns
	// once it is durable.
	Append(ctx context.Context, body UpdateBody) error

	// Scan returns the update history needed to reconstruct current
	// state, newest first, truncated at (and including) the most recent
	// snapshot.
	Scan(ctx context.Context) ([]StateUpdate, error)
}
