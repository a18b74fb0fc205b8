package kollider

import (
	"encoding/json"
	"fmt"

	"github.com/kollider-hedge/hedged/ledger"
)

// inboundOrder is the wire shape of a single resting order as reported by
// the exchange, keyed under a symbol in an OpenOrders frame.
type inboundOrder struct {
	Id       uint64   `json:"id"`
	ExtId    string   `json:"ext_id"`
	Leverage uint64   `json:"leverage"`
	Price    uint64   `json:"price"`
	Quantity uint64   `json:"quantity"`
	Side     wireSide `json:"side"`
}

func (o inboundOrder) toLedger() ledger.KolliderOrder {
	return ledger.KolliderOrder{
		Id:       o.Id,
		ExtId:    o.ExtId,
		Leverage: o.Leverage,
		Price:    o.Price,
		Quantity: o.Quantity,
		Side:     fromWireSide(o.Side),
	}
}

type inboundPosition struct {
	LiquidationPrice float64 `json:"liquidation_price"`
	Leverage         uint64  `json:"leverage"`
	EntryValue       uint64  `json:"entry_value"`
	EntryPrice       uint64  `json:"entry_price"`
	Quantity         uint64  `json:"quantity"`
	Rpnl             float64 `json:"rpnl"`
}

func (p inboundPosition) toLedger() ledger.KolliderPosition {
	return ledger.KolliderPosition{
		LiquidationPrice: p.LiquidationPrice,
		Leverage:         p.Leverage,
		EntryValue:       p.EntryValue,
		EntryPrice:       p.EntryPrice,
		Quantity:         p.Quantity,
		Rpnl:             p.Rpnl,
	}
}

// fromWireSide converts the exchange's own Bid/Ask convention into the
// core's inverse convention. This, together with toWireSide in outbound.go,
// is the single inversion point named in SPEC_FULL.md §9.
func fromWireSide(s wireSide) ledger.Side {
	if s == wireBid {
		return ledger.Ask
	}
	return ledger.Bid
}

func toWireSide(s ledger.Side) wireSide {
	if s == ledger.Bid {
		return wireAsk
	}
	return wireBid
}

// DecodeInbound parses one inbound exchange frame into a ledger.ExchangeMessage.
// A nil, nil result means the frame is a recognized-but-unhandled type (or
// unrecognized entirely) and should be dropped before reaching the ledger.
func DecodeInbound(raw []byte) (ledger.ExchangeMessage, error) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("kollider: decoding inbound envelope: %w", err)
	}

	switch env.Type {
	case "open_orders":
		var body struct {
			OpenOrders map[string][]inboundOrder `json:"open_orders"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		out := make(map[string][]ledger.KolliderOrder, len(body.OpenOrders))
		for symbol, orders := range body.OpenOrders {
			converted := make([]ledger.KolliderOrder, len(orders))
			for i, o := range orders {
				converted[i] = o.toLedger()
			}
			out[symbol] = converted
		}
		return ledger.OpenOrdersMsg{OpenOrders: out}, nil

	case "positions":
		var body struct {
			Positions map[string]inboundPosition `json:"positions"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		out := make(map[string]ledger.KolliderPosition, len(body.Positions))
		for symbol, p := range body.Positions {
			out[symbol] = p.toLedger()
		}
		return ledger.PositionsMsg{Positions: out}, nil

	case "open":
		var body struct {
			Symbol string       `json:"symbol"`
			Order  inboundOrder `json:"order"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return ledger.OpenMsg{Symbol: body.Symbol, Order: body.Order.toLedger()}, nil

	case "balances":
		var body struct {
			Cash float64 `json:"cash"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return ledger.BalancesMsg{Cash: body.Cash}, nil

	case "index_values":
		var body struct {
			Symbol string  `json:"symbol"`
			Value  float64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return ledger.IndexValuesMsg{Symbol: body.Symbol, Value: body.Value}, nil

	case "received":
		var body struct {
			ExtOrderId string   `json:"ext_order_id"`
			OrderId    uint64   `json:"order_id"`
			Price      uint64   `json:"price"`
			Quantity   uint64   `json:"quantity"`
			Side       wireSide `json:"side"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		return ledger.ReceivedMsg{
			ExtOrderId:  body.ExtOrderId,
			OrderId:     body.OrderId,
			Price:       body.Price,
			Quantity:    body.Quantity,
			MatchedSide: fromWireSide(body.Side),
		}, nil

	default:
		return nil, nil
	}
}
