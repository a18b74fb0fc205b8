package ledger

import (
	"github.com/go-errors/errors"
	"github.com/kollider-hedge/hedged/metrics"
	"github.com/kollider-hedge/hedged/ratealgebra"
	"github.com/kollider-hedge/hedged/update"
)

// StateUpdateError wraps a rate-algebra failure surfaced while applying an
// update.UpdateBody to the ledger.
type StateUpdateError struct {
	Cause error
}

func (e *StateUpdateError) Error() string {
	return "state update error: " + e.Cause.Error()
}

func (e *StateUpdateError) Unwrap() error {
	return e.Cause
}

// ApplyUpdate folds a single log entry into the ledger. Htlc entries combine
// into the existing ChannelHedge (or insert a fresh one when the channel is
// unseen); Snapshot entries replace the per-channel map wholesale. Callers
// must hold Mu.
func (s *State) ApplyUpdate(u update.StateUpdate) error {
	switch body := u.Body.(type) {
	case update.HtlcUpdate:
		if err := s.withHtlc(body); err != nil {
			return &StateUpdateError{Cause: err}
		}
	case update.StateSnapshot:
		s.ChannelsHedge = make(map[ChannelId]ChannelHedge, len(body.ChannelsHedge))
		for id, hedge := range body.ChannelsHedge {
			s.ChannelsHedge[id] = hedge
		}
	default:
		return errors.Errorf("ledger: unknown update body type %T", u.Body)
	}
	s.LastChanged = u.Created
	metrics.LedgerApplyTotal.Inc()
	return nil
}

func (s *State) withHtlc(htlc update.HtlcUpdate) error {
	existing, ok := s.ChannelsHedge[htlc.ChannelId]
	if !ok {
		s.ChannelsHedge[htlc.ChannelId] = ChannelHedge{Sats: htlc.Sats, Rate: htlc.Rate}
		return nil
	}

	combined, err := ratealgebra.Combine(
		ratealgebra.Exposure{Sats: existing.Sats, Rate: existing.Rate},
		htlc.Sats, htlc.Rate,
	)
	if err != nil {
		return err
	}
	s.ChannelsHedge[htlc.ChannelId] = ChannelHedge{Sats: combined.Sats, Rate: combined.Rate}
	return nil
}
