package ledger

import (
	"context"

	"github.com/kollider-hedge/hedged/update"
)

// Replay reconstructs a State by scanning log and folding every entry from
// oldest to newest. Log.Scan already returns entries newest-first truncated
// at the first snapshot; Replay reverses that prefix before folding, per
// SPEC_FULL.md §4.2.
func Replay(ctx context.Context, cfg HedgeConfig, log update.Log) (*State, error) {
	entries, err := log.Scan(ctx)
	if err != nil {
		return nil, err
	}

	s := New(cfg)
	for i := len(entries) - 1; i >= 0; i-- {
		if err := s.ApplyUpdate(entries[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}
