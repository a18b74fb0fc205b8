// Package ledger holds the in-memory exposure ledger: the single State
// instance that folds HTLC updates and exchange messages into per-channel
// exposure, exchange balance, ticker, and open/opening orders. See
// SPEC_FULL.md §4.3 (component C).
package ledger

import (
	"sync"
	"time"

	"github.com/kollider-hedge/hedged/update"
)

// ChannelId identifies a fiat-bearing payment channel.
type ChannelId = update.ChannelId

// ChannelHedge is the aggregated (sats, rate) exposure for one channel.
type ChannelHedge = update.ChannelHedge

// Side is the core's own order-side convention: Bid means "sell sats / buy
// fiat" (a short hedge), Ask means "buy sats / sell fiat" (unwind a hedge).
// This is the INVERSE of the exchange's own convention; the single inversion
// point lives in package kollider (SPEC_FULL.md §4.6).
type Side int

const (
	Bid Side = iota
	Ask
)

func (s Side) Inverse() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	if s == Bid {
		return "Bid"
	}
	return "Ask"
}

// HedgeConfig holds the static policy parameters the decision engine reads.
type HedgeConfig struct {
	HedgePair     string
	HedgeSym      string
	SpreadPercent float64
	HedgeLeverage uint64
}

// KolliderOrder is an exchange-resident order as reported back to us.
type KolliderOrder struct {
	Id       uint64
	ExtId    string
	Leverage uint64
	Price    uint64
	Quantity uint64
	Side     Side
}

// RequiredMargin returns the sats locked by this order given its price,
// quantity, and leverage: ceil(quantity * 10^8 * 1000 / (price * leverage)).
func (o KolliderOrder) RequiredMargin() uint64 {
	return requiredMargin(o.Quantity, o.Price, o.Leverage)
}

func requiredMargin(quantity, price, leverage uint64) uint64 {
	num := quantity * 100_000_000 * 1000
	den := price * leverage
	if den == 0 {
		return 0
	}
	return (num + den - 1) / den
}

// KolliderPosition is the open position on the hedging symbol, at most one
// per symbol.
type KolliderPosition struct {
	LiquidationPrice float64
	Leverage         uint64
	EntryValue       uint64
	EntryPrice       uint64
	Quantity         uint64
	Rpnl             float64
}

// OpeningOrder is an order submitted to the exchange but not yet
// acknowledged as open; tracked by client-generated ExtId until a Received
// frame arrives.
type OpeningOrder struct {
	ExtId    string
	Symbol   string
	Sats     int64
	Price    uint64
	Side     Side
	Leverage uint64
}

// StateAction is the decision engine's output: either open a new order or
// close an existing one.
type StateAction interface {
	isStateAction()
}

// OpenOrder schedules submission of a new order to the exchange.
type OpenOrder struct {
	Order OpeningOrder
}

func (OpenOrder) isStateAction() {}

// CloseOrder schedules cancellation of an existing exchange order.
type CloseOrder struct {
	OrderId uint64
	Symbol  string
}

func (CloseOrder) isStateAction() {}

// State is the ledger: the single source of truth for exposure, exchange
// orders, and position, as reconstructed by Replay at boot and mutated
// thereafter by a single exclusive holder at a time (SPEC_FULL.md §5).
//
// Every exported method below assumes the caller already holds Mu for the
// duration of the logical operation (apply + decide + finalize); State does
// not take its own lock internally, the same convention htlcswitch.Switch
// uses for its unexported link-index methods.
type State struct {
	Mu sync.Mutex

	LastChanged      time.Time
	Config           HedgeConfig
	Balance          *float64
	Ticker           *float64
	ChannelsHedge    map[ChannelId]ChannelHedge
	OpenedOrders     []KolliderOrder
	OpenedOrdersSet  bool
	OpenedPosition   *KolliderPosition
	OpeningOrders    map[string]OpeningOrder
	ScheduledActions []StateAction
}

// New returns a fresh, empty ledger for the given static configuration.
func New(cfg HedgeConfig) *State {
	return &State{
		Config:        cfg,
		ChannelsHedge: make(map[ChannelId]ChannelHedge),
		OpeningOrders: make(map[string]OpeningOrder),
	}
}
