// Package kollider is the exchange session: a gorilla/websocket duplex
// connection that applies inbound exchange frames to the ledger and relays
// outbound order/cancel frames. Grounded on peer.go's readHandler /
// writeHandler / queueHandler trio (SPEC_FULL.md §4.6).
package kollider

import (
	"encoding/json"
	"fmt"
)

// MarginType and OrderType/SettlementType are opaque wire enums the
// exchange expects verbatim on outbound order frames.
const (
	MarginTypeIsolated   = "Isolated"
	OrderTypeLimit       = "Limit"
	SettlementTypeDelayed = "Delayed"
)

// wireSide is the exchange's own Bid/Ask convention, the inverse of
// ledger.Side (SPEC_FULL.md §4.6, §9 "side-orientation bug surface").
type wireSide string

const (
	wireBid wireSide = "Bid"
	wireAsk wireSide = "Ask"
)

// outboundOrder is the wire shape of an order placement request.
type outboundOrder struct {
	Price          uint64   `json:"price"`
	Quantity       uint64   `json:"quantity"`
	Symbol         string   `json:"symbol"`
	Leverage       uint64   `json:"leverage"`
	Side           wireSide `json:"side"`
	MarginType     string   `json:"margin_type"`
	OrderType      string   `json:"order_type"`
	SettlementType string   `json:"settlement_type"`
	ExtOrderId     string   `json:"ext_order_id"`
}

// outboundCancelOrder is the wire shape of an order cancellation request.
type outboundCancelOrder struct {
	OrderId        uint64 `json:"order_id"`
	Symbol         string `json:"symbol"`
	SettlementType string `json:"settlement_type"`
}

// outboundSubscribe subscribes to a set of channels for a set of symbols.
type outboundSubscribe struct {
	Channels []string `json:"channels"`
	Symbols  []string `json:"symbols"`
}

type outboundFetchOpenOrders struct{}
type outboundFetchPositions struct{}

// envelope is the tagged-union shape every outbound frame is wrapped in:
// {"type": "<Kind>", ...fields}. Inbound frames share the same shape.
type envelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

func wrap(kind string, body interface{}) ([]byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	fields["type"] = json.RawMessage(fmt.Sprintf("%q", kind))
	return json.Marshal(fields)
}
