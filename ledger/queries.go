package ledger

import (
	"math"

	"github.com/kollider-hedge/hedged/ratealgebra"
)

// HedgeCapacity is the sum of sats held across every channel's exposure
// (Σ sats): the total fiat exposure the daemon needs to keep hedged.
func (s *State) HedgeCapacity() int64 {
	var total int64
	for _, hedge := range s.ChannelsHedge {
		total += hedge.Sats
	}
	return total
}

// TotalHedge folds every channel's exposure together via the rate algebra,
// returning the combined (sats, rate) pair. HedgeAvgPrice derives from its
// rate.
func (s *State) TotalHedge() (ChannelHedge, error) {
	total := ChannelHedge{}
	first := true
	for _, hedge := range s.ChannelsHedge {
		if first {
			// The running total starts undefined (0, 0); the first
			// channel folded in becomes the total outright rather
			// than going through combine, which would otherwise
			// read the (0, 0) accumulator as a zero-rate balance
			// and reject a non-zero delta as InsufficientFiatBalance.
			total = hedge
			first = false
			continue
		}
		combined, err := combineHedge(total, hedge)
		if err != nil {
			return ChannelHedge{}, err
		}
		total = combined
	}
	return total, nil
}

// HedgeAvgPrice is the weighted-average fiat price of the combined exposure,
// 0 when there is no exposure (rate 0).
func (s *State) HedgeAvgPrice() (float64, error) {
	total, err := s.TotalHedge()
	if err != nil {
		return 0, err
	}
	if total.Rate == 0 {
		return 0, nil
	}
	return 1e8 / float64(total.Rate), nil
}

// CurrentPrice converts the raw ticker index value into sats-per-USD,
// rounded, returning 0 when the ticker has not been populated yet.
func (s *State) CurrentPrice() uint64 {
	if s.Ticker == nil || *s.Ticker == 0 {
		return 0
	}
	return uint64(math.Round(1e8 / *s.Ticker))
}

// ShortOrders is the required margin summed over every open order on the
// Ask side (in our convention, closing/unwinding a hedge).
func (s *State) ShortOrders() uint64 {
	return sumMarginBySide(s.OpenedOrders, Ask)
}

// LongOrders is the required margin summed over every open order on the Bid
// side (in our convention, a short hedge).
func (s *State) LongOrders() uint64 {
	return sumMarginBySide(s.OpenedOrders, Bid)
}

func sumMarginBySide(orders []KolliderOrder, side Side) uint64 {
	var total uint64
	for _, o := range orders {
		if o.Side == side {
			total += o.RequiredMargin()
		}
	}
	return total
}

// ScheduledShorts/ScheduledLongs sum sats over not-yet-submitted scheduled
// OpenOrder actions, by side.
func (s *State) ScheduledShorts() int64 {
	return sumScheduledSatsBySide(s.ScheduledActions, Bid)
}

func (s *State) ScheduledLongs() int64 {
	return sumScheduledSatsBySide(s.ScheduledActions, Ask)
}

func sumScheduledSatsBySide(actions []StateAction, side Side) int64 {
	var total int64
	for _, a := range actions {
		if open, ok := a.(OpenOrder); ok && open.Order.Side == side {
			total += open.Order.Sats
		}
	}
	return total
}

// OpeningShorts/OpeningLongs sum sats over submitted-but-unacknowledged
// orders, by side.
func (s *State) OpeningShorts() int64 {
	return sumOpeningSatsBySide(s.OpeningOrders, Bid)
}

func (s *State) OpeningLongs() int64 {
	return sumOpeningSatsBySide(s.OpeningOrders, Ask)
}

func sumOpeningSatsBySide(orders map[string]OpeningOrder, side Side) int64 {
	var total int64
	for _, o := range orders {
		if o.Side == side {
			total += o.Sats
		}
	}
	return total
}

// PositionVolume is the sats value of the open position, 0 when there is
// none.
func (s *State) PositionVolume() uint64 {
	if s.OpenedPosition == nil {
		return 0
	}
	return s.OpenedPosition.EntryValue
}

// PositionQuantity is the contract quantity of the open position, 0 when
// there is none.
func (s *State) PositionQuantity() uint64 {
	if s.OpenedPosition == nil {
		return 0
	}
	return s.OpenedPosition.Quantity
}

func combineHedge(h, delta ChannelHedge) (ChannelHedge, error) {
	combined, err := ratealgebra.Combine(
		ratealgebra.Exposure{Sats: h.Sats, Rate: h.Rate}, delta.Sats, delta.Rate,
	)
	if err != nil {
		return ChannelHedge{}, err
	}
	return ChannelHedge{Sats: combined.Sats, Rate: combined.Rate}, nil
}
