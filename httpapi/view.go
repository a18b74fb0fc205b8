package httpapi

import (
	"time"

	"github.com/kollider-hedge/hedged/ledger"
)

// stateView is the wire shape of GET /state: a snake_case projection of
// ledger.State. Kept separate from ledger.State itself so the ledger package
// stays free of wire-format concerns (SPEC_FULL.md §6) and so State's own
// Mu field never has to reason about being marshaled.
type stateView struct {
	LastChanged   time.Time                              `json:"last_changed"`
	HedgePair     string                                 `json:"hedge_pair"`
	HedgeSym      string                                 `json:"hedge_sym"`
	SpreadPercent float64                                `json:"spread_percent"`
	HedgeLeverage uint64                                 `json:"hedge_leverage"`
	Balance       *float64                               `json:"balance"`
	Ticker        *float64                               `json:"ticker"`
	ChannelsHedge map[ledger.ChannelId]channelHedgeView `json:"channels_hedge"`
	OpenedOrders  []orderView                            `json:"opened_orders,omitempty"`
	Position      *positionView                          `json:"opened_position,omitempty"`
	OpeningOrders []openingOrderView                     `json:"opening_orders"`
}

type channelHedgeView struct {
	Sats int64 `json:"sats"`
	Rate int64 `json:"rate"`
}

type orderView struct {
	Id       uint64 `json:"id"`
	ExtId    string `json:"ext_order_id"`
	Leverage uint64 `json:"leverage"`
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`
	Side     string `json:"side"`
}

type positionView struct {
	LiquidationPrice float64 `json:"liquidation_price"`
	Leverage         uint64  `json:"leverage"`
	EntryValue       uint64  `json:"entry_value"`
	EntryPrice       uint64  `json:"entry_price"`
	Quantity         uint64  `json:"quantity"`
	Rpnl             float64 `json:"rpnl"`
}

type openingOrderView struct {
	ExtId    string `json:"ext_order_id"`
	Symbol   string `json:"symbol"`
	Sats     int64  `json:"sats"`
	Price    uint64 `json:"price"`
	Side     string `json:"side"`
	Leverage uint64 `json:"leverage"`
}

// newStateView snapshots s into a stateView. Caller must hold s.Mu.
func newStateView(s *ledger.State) stateView {
	channels := make(map[ledger.ChannelId]channelHedgeView, len(s.ChannelsHedge))
	for id, hedge := range s.ChannelsHedge {
		channels[id] = channelHedgeView{Sats: hedge.Sats, Rate: hedge.Rate}
	}

	var orders []orderView
	if s.OpenedOrdersSet {
		orders = make([]orderView, 0, len(s.OpenedOrders))
		for _, o := range s.OpenedOrders {
			orders = append(orders, orderView{
				Id:       o.Id,
				ExtId:    o.ExtId,
				Leverage: o.Leverage,
				Price:    o.Price,
				Quantity: o.Quantity,
				Side:     o.Side.String(),
			})
		}
	}

	var position *positionView
	if s.OpenedPosition != nil {
		position = &positionView{
			LiquidationPrice: s.OpenedPosition.LiquidationPrice,
			Leverage:         s.OpenedPosition.Leverage,
			EntryValue:       s.OpenedPosition.EntryValue,
			EntryPrice:       s.OpenedPosition.EntryPrice,
			Quantity:         s.OpenedPosition.Quantity,
			Rpnl:             s.OpenedPosition.Rpnl,
		}
	}

	opening := make([]openingOrderView, 0, len(s.OpeningOrders))
	for _, o := range s.OpeningOrders {
		opening = append(opening, openingOrderView{
			ExtId:    o.ExtId,
			Symbol:   o.Symbol,
			Sats:     o.Sats,
			Price:    o.Price,
			Side:     o.Side.String(),
			Leverage: o.Leverage,
		})
	}

	return stateView{
		LastChanged:   s.LastChanged,
		HedgePair:     s.Config.HedgePair,
		HedgeSym:      s.Config.HedgeSym,
		SpreadPercent: s.Config.SpreadPercent,
		HedgeLeverage: s.Config.HedgeLeverage,
		Balance:       s.Balance,
		Ticker:        s.Ticker,
		ChannelsHedge: channels,
		OpenedOrders:  orders,
		Position:      position,
		OpeningOrders: opening,
	}
}
