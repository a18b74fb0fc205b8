package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kollider-hedge/hedged/ledger"
)

func newReadyState(cfg ledger.HedgeConfig, ticker float64) *ledger.State {
	s := ledger.New(cfg)
	s.OpenedOrders = nil
	s.OpenedOrdersSet = true
	t := ticker
	s.Ticker = &t
	return s
}

func TestCalculateNextActionsNoopWithoutTickerOrOrders(t *testing.T) {
	s := ledger.New(ledger.HedgeConfig{})
	require.NoError(t, CalculateNextActions(s))
	assert.Empty(t, s.ScheduledActions)
}

func TestCalculateNextActionsNoopWhenBalanced(t *testing.T) {
	s := newReadyState(ledger.HedgeConfig{SpreadPercent: 0.1, HedgeLeverage: 100}, 35000)
	require.NoError(t, CalculateNextActions(s))
	assert.Empty(t, s.ScheduledActions)
}

func TestCalculateNextActionsEndToEndOpenOrder(t *testing.T) {
	cfg := ledger.HedgeConfig{HedgeSym: "BTCUSD.PERP", HedgePair: ".BTCUSD", SpreadPercent: 0.1, HedgeLeverage: 100}
	s := newReadyState(cfg, 35000)
	s.ChannelsHedge["aboba"] = ledger.ChannelHedge{Sats: 20000, Rate: 2500}

	require.NoError(t, CalculateNextActions(s))
	require.Len(t, s.ScheduledActions, 1)

	action, ok := s.ScheduledActions[0].(ledger.OpenOrder)
	require.True(t, ok)
	assert.Equal(t, int64(20000), action.Order.Sats)
	assert.Equal(t, uint64(2860), action.Order.Price)
	assert.Equal(t, ledger.Bid, action.Order.Side)
	assert.NotEmpty(t, action.Order.ExtId)
}

func TestCalculateNextActionsSuppressedByOpeningOrders(t *testing.T) {
	cfg := ledger.HedgeConfig{HedgeSym: "BTCUSD.PERP", SpreadPercent: 0.1, HedgeLeverage: 100}
	s := newReadyState(cfg, 35000)
	s.ChannelsHedge["aboba"] = ledger.ChannelHedge{Sats: 20000, Rate: 2500}
	s.OpeningOrders["ext-1"] = ledger.OpeningOrder{ExtId: "ext-1", Sats: 20000, Side: ledger.Bid}

	require.NoError(t, CalculateNextActions(s))
	assert.Empty(t, s.ScheduledActions)
}

func TestCalculateNextActionsUnwind(t *testing.T) {
	cfg := ledger.HedgeConfig{HedgeSym: "BTCUSD.PERP", SpreadPercent: 0.1, HedgeLeverage: 100}
	s := newReadyState(cfg, 35000)
	pos := ledger.KolliderPosition{EntryValue: 20000, Quantity: 1}
	s.OpenedPosition = &pos

	require.NoError(t, CalculateNextActions(s))
	require.Len(t, s.ScheduledActions, 1)
	action, ok := s.ScheduledActions[0].(ledger.OpenOrder)
	require.True(t, ok)
	assert.Equal(t, ledger.Ask, action.Order.Side)
}
