package kollider

import (
	"fmt"

	"github.com/kollider-hedge/hedged/ledger"
)

// EncodeOutbound translates a scheduled StateAction into the wire frame the
// exchange expects, per SPEC_FULL.md §4.6.
func EncodeOutbound(action ledger.StateAction) ([]byte, error) {
	switch a := action.(type) {
	case ledger.OpenOrder:
		return encodeOpenOrder(a.Order)
	case ledger.CloseOrder:
		return wrap("cancel_order", outboundCancelOrder{
			OrderId:        a.OrderId,
			Symbol:         a.Symbol,
			SettlementType: SettlementTypeDelayed,
		})
	default:
		return nil, fmt.Errorf("kollider: unknown state action type %T", action)
	}
}

func encodeOpenOrder(o ledger.OpeningOrder) ([]byte, error) {
	if o.Price == 0 {
		return nil, fmt.Errorf("kollider: opening order %s has zero price", o.ExtId)
	}

	// usd_price is the price expressed in tenths of a USD.
	usdPrice := 10 * uint64(100_000_000) / o.Price

	// quantity is the number of 1-fiat-unit contracts, rounded up so the
	// submitted order always covers at least the requested sats.
	quantity := ceilDiv(absInt64(o.Sats), int64(o.Price))

	return wrap("order", outboundOrder{
		Price:          usdPrice,
		Quantity:       uint64(quantity),
		Symbol:         o.Symbol,
		Leverage:       o.Leverage,
		Side:           toWireSide(o.Side),
		MarginType:     MarginTypeIsolated,
		OrderType:      OrderTypeLimit,
		SettlementType: SettlementTypeDelayed,
		ExtOrderId:     o.ExtId,
	})
}

func ceilDiv(a, b int64) int64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// PrimingFrames returns the three frames a freshly-authenticated session
// must send to prime the ledger: a subscription to the index feed for
// hedgePair, then a request for the current open-order book and position.
func PrimingFrames(hedgePair string) ([][]byte, error) {
	subscribe, err := wrap("subscribe", outboundSubscribe{
		Channels: []string{"index_values"},
		Symbols:  []string{hedgePair},
	})
	if err != nil {
		return nil, err
	}
	fetchOrders, err := wrap("fetch_open_orders", outboundFetchOpenOrders{})
	if err != nil {
		return nil, err
	}
	fetchPositions, err := wrap("fetch_positions", outboundFetchPositions{})
	if err != nil {
		return nil, err
	}
	return [][]byte{subscribe, fetchOrders, fetchPositions}, nil
}
