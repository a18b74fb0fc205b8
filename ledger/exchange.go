package ledger

import "github.com/kollider-hedge/hedged/metrics"

// ExchangeMessage is one inbound frame from the exchange's duplex stream,
// decoded by package kollider and applied here under the ledger lock. The
// set of concrete types below is exhaustive for the frames this daemon
// acts on (SPEC_FULL.md §4.3); anything else the session receives is
// ignored before it ever reaches ApplyExchangeMsg.
type ExchangeMessage interface {
	isExchangeMessage()
}

// OpenOrdersMsg reports the full open-order book, keyed by symbol.
type OpenOrdersMsg struct {
	OpenOrders map[string][]KolliderOrder
}

func (OpenOrdersMsg) isExchangeMessage() {}

// PositionsMsg reports the open position per symbol.
type PositionsMsg struct {
	Positions map[string]KolliderPosition
}

func (PositionsMsg) isExchangeMessage() {}

// OpenMsg announces a single new order opened on the given symbol.
type OpenMsg struct {
	Symbol string
	Order  KolliderOrder
}

func (OpenMsg) isExchangeMessage() {}

// BalancesMsg reports the current cash balance.
type BalancesMsg struct {
	Cash float64
}

func (BalancesMsg) isExchangeMessage() {}

// IndexValuesMsg reports a tick of the index feed for symbol.
type IndexValuesMsg struct {
	Symbol string
	Value  float64
}

func (IndexValuesMsg) isExchangeMessage() {}

// ReceivedMsg acknowledges that a client-submitted order (by ExtOrderId) has
// matched on the exchange, reporting the side it actually matched on.
type ReceivedMsg struct {
	ExtOrderId string
	OrderId    uint64
	Price      uint64
	Quantity   uint64
	// MatchedSide is the side the exchange matched the order on, already
	// converted to our convention by package kollider's decoder.
	// ApplyExchangeMsg does not read it: the held order's side is derived
	// from the opening order instead.
	MatchedSide Side
}

func (ReceivedMsg) isExchangeMessage() {}

// ApplyExchangeMsg folds one inbound exchange frame into the ledger and
// reports whether the ledger observably changed. Callers must hold Mu.
func (s *State) ApplyExchangeMsg(m ExchangeMessage) bool {
	switch msg := m.(type) {
	case OpenOrdersMsg:
		orders, ok := msg.OpenOrders[s.Config.HedgeSym]
		if !ok {
			orders = nil
		}
		s.OpenedOrders = orders
		s.OpenedOrdersSet = true
		metrics.OpenOrdersGauge.Set(float64(len(orders)))
		return true

	case PositionsMsg:
		if pos, ok := msg.Positions[s.Config.HedgeSym]; ok {
			p := pos
			s.OpenedPosition = &p
		} else {
			s.OpenedPosition = &KolliderPosition{}
		}
		return true

	case OpenMsg:
		if msg.Symbol != s.Config.HedgeSym {
			return false
		}
		s.OpenedOrders = append(s.OpenedOrders, msg.Order)
		s.OpenedOrdersSet = true
		metrics.OpenOrdersGauge.Set(float64(len(s.OpenedOrders)))
		return true

	case BalancesMsg:
		cash := msg.Cash
		s.Balance = &cash
		return true

	case IndexValuesMsg:
		if msg.Symbol != s.Config.HedgePair {
			return false
		}
		value := msg.Value
		s.Ticker = &value
		return true

	case ReceivedMsg:
		opening, ok := s.OpeningOrders[msg.ExtOrderId]
		if !ok {
			return false
		}
		delete(s.OpeningOrders, msg.ExtOrderId)
		s.OpenedOrders = append(s.OpenedOrders, KolliderOrder{
			Id:       msg.OrderId,
			ExtId:    msg.ExtOrderId,
			Leverage: opening.Leverage,
			Price:    msg.Price,
			Quantity: msg.Quantity,
			// The exchange reports the matched side; the opening
			// intent was expressed in our inverse convention, so
			// the order we now hold is opening.Side.Inverse().
			Side: opening.Side.Inverse(),
		})
		s.OpenedOrdersSet = true
		metrics.OpenOrdersGauge.Set(float64(len(s.OpenedOrders)))
		return true

	default:
		return false
	}
}
