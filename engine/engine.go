// Package engine implements the hedging decision engine: a pure function
// over ledger.State that schedules the next OpenOrder action under the
// "allowed position gap" policy; it never schedules a CloseOrder. See SPEC_FULL.md §4.4.
package engine

import (
	"math"

	"github.com/google/uuid"

	"github.com/kollider-hedge/hedged/ledger"
	"github.com/kollider-hedge/hedged/metrics"
)

// AllowedPositionGap is the tolerance band, in USD, within which the engine
// does not trade, preventing thrash from small HTLC fluctuations.
const AllowedPositionGap = 1

// InvariantViolationError indicates a bug: a position gap calculation that
// violates the engine's own triggering condition. It is returned rather than
// produced by an actual panic so the daemon stays crash-only at the
// supervisor level (SPEC_FULL.md §9) instead of losing the whole process to
// an unrecovered goroutine panic.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return "engine: invariant violated: " + e.Detail
}

// CalculateNextActions appends at most one StateAction to s.ScheduledActions
// under the gap policy. It is a no-op unless OpenedOrders, OpeningOrders,
// and Ticker are all populated: the engine will not trade without a current
// price and a known order-book state. Callers must hold s.Mu.
func CalculateNextActions(s *ledger.State) error {
	if !s.OpenedOrdersSet || s.Ticker == nil {
		return nil
	}

	currentPrice := s.CurrentPrice()
	if currentPrice == 0 {
		return nil
	}

	hcap := s.HedgeCapacity()
	posShort := int64(s.PositionVolume()) +
		int64(sumRequiredMargin(s.OpenedOrders, ledger.Ask)) +
		s.ScheduledShorts() + s.OpeningShorts()
	posLong := int64(s.PositionVolume()) -
		int64(sumRequiredMargin(s.OpenedOrders, ledger.Bid)) -
		s.ScheduledLongs() - s.OpeningLongs()

	gap := int64(AllowedPositionGap * float64(currentPrice))

	switch {
	case hcap > posShort+gap:
		if posShort > hcap {
			return &InvariantViolationError{Detail: "pos_short > hcap on short-trigger"}
		}
		price := uint64(math.Round(float64(currentPrice) * (1 + 0.01*s.Config.SpreadPercent)))
		s.ScheduledActions = append(s.ScheduledActions, ledger.OpenOrder{
			Order: ledger.OpeningOrder{
				ExtId:    uuid.NewString(),
				Symbol:   s.Config.HedgeSym,
				Sats:     hcap - posShort,
				Price:    price,
				Side:     ledger.Bid,
				Leverage: s.Config.HedgeLeverage,
			},
		})
		metrics.ScheduledActionsTotal.Inc()

	case hcap < posLong-gap:
		if hcap > posLong {
			return &InvariantViolationError{Detail: "hcap > pos_long on unwind-trigger"}
		}
		price := uint64(math.Round(float64(currentPrice) * (1 - 0.01*s.Config.SpreadPercent)))
		s.ScheduledActions = append(s.ScheduledActions, ledger.OpenOrder{
			Order: ledger.OpeningOrder{
				ExtId:    uuid.NewString(),
				Symbol:   s.Config.HedgeSym,
				Sats:     posLong - hcap,
				Price:    price,
				Side:     ledger.Ask,
				Leverage: s.Config.HedgeLeverage,
			},
		})
		metrics.ScheduledActionsTotal.Inc()
	}

	return nil
}

func sumRequiredMargin(orders []ledger.KolliderOrder, side ledger.Side) uint64 {
	var total uint64
	for _, o := range orders {
		if o.Side == side {
			total += o.RequiredMargin()
		}
	}
	return total
}
