package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kollider-hedge/hedged/update"
)

type fakeLog struct {
	entries []update.StateUpdate
}

func (f *fakeLog) Append(ctx context.Context, body update.UpdateBody) error {
	f.entries = append([]update.StateUpdate{{Created: time.Now(), Body: body}}, f.entries...)
	return nil
}

func (f *fakeLog) Scan(ctx context.Context) ([]update.StateUpdate, error) {
	var out []update.StateUpdate
	for _, e := range f.entries {
		out = append(out, e)
		if e.Body.Tag() == update.TagSnapshot {
			break
		}
	}
	return out, nil
}

func TestReplaySnapshotTruncation(t *testing.T) {
	now := time.Now()
	log := &fakeLog{entries: []update.StateUpdate{
		{Created: now.Add(2 * time.Second), Body: update.HtlcUpdate{ChannelId: "aboba", Sats: 500, Rate: 2500}},
		{Created: now.Add(1 * time.Second), Body: update.HtlcUpdate{ChannelId: "aboba", Sats: 100, Rate: 2500}},
		{Created: now, Body: update.StateSnapshot{ChannelsHedge: map[update.ChannelId]update.ChannelHedge{
			"aboba": {Sats: 300, Rate: 2500},
		}}},
		{Created: now.Add(-1 * time.Second), Body: update.HtlcUpdate{ChannelId: "aboba", Sats: 1000, Rate: 2500}},
	}}

	s, err := Replay(context.Background(), HedgeConfig{HedgeSym: "BTCUSD.PERP"}, log)
	require.NoError(t, err)
	assert.Equal(t, ChannelHedge{Sats: 900, Rate: 2500}, s.ChannelsHedge["aboba"])
}

func TestApplyUpdateInsertsFreshChannel(t *testing.T) {
	s := New(HedgeConfig{})
	err := s.ApplyUpdate(update.StateUpdate{
		Created: time.Now(),
		Body:    update.HtlcUpdate{ChannelId: "c1", Sats: 100, Rate: 1000},
	})
	require.NoError(t, err)
	assert.Equal(t, ChannelHedge{Sats: 100, Rate: 1000}, s.ChannelsHedge["c1"])
}

func TestApplyUpdateCombinesExisting(t *testing.T) {
	s := New(HedgeConfig{})
	require.NoError(t, s.ApplyUpdate(update.StateUpdate{
		Created: time.Now(),
		Body:    update.HtlcUpdate{ChannelId: "c1", Sats: 100, Rate: 1000},
	}))
	require.NoError(t, s.ApplyUpdate(update.StateUpdate{
		Created: time.Now(),
		Body:    update.HtlcUpdate{ChannelId: "c1", Sats: 50, Rate: 1500},
	}))
	assert.Equal(t, ChannelHedge{Sats: 150, Rate: 1125}, s.ChannelsHedge["c1"])
}

func TestApplyUpdateSurfacesInsufficientSats(t *testing.T) {
	s := New(HedgeConfig{})
	require.NoError(t, s.ApplyUpdate(update.StateUpdate{
		Created: time.Now(),
		Body:    update.HtlcUpdate{ChannelId: "c1", Sats: 100, Rate: 1000},
	}))
	err := s.ApplyUpdate(update.StateUpdate{
		Created: time.Now(),
		Body:    update.HtlcUpdate{ChannelId: "c1", Sats: -200, Rate: 1000},
	})
	require.Error(t, err)
	var stateErr *StateUpdateError
	require.ErrorAs(t, err, &stateErr)
}

func TestApplyExchangeMsgReceivedInvertsSide(t *testing.T) {
	s := New(HedgeConfig{HedgeSym: "BTCUSD.PERP"})
	s.OpeningOrders["ext-1"] = OpeningOrder{ExtId: "ext-1", Symbol: "BTCUSD.PERP", Sats: 1000, Price: 35000, Side: Bid, Leverage: 100}

	changed := s.ApplyExchangeMsg(ReceivedMsg{
		ExtOrderId:  "ext-1",
		OrderId:     42,
		Price:       35000,
		Quantity:    1,
		MatchedSide: Ask,
	})
	require.True(t, changed)
	_, stillOpening := s.OpeningOrders["ext-1"]
	assert.False(t, stillOpening)
	require.Len(t, s.OpenedOrders, 1)
	assert.Equal(t, Ask, s.OpenedOrders[0].Side)
}

func TestApplyExchangeMsgReceivedIgnoresUnknown(t *testing.T) {
	s := New(HedgeConfig{})
	changed := s.ApplyExchangeMsg(ReceivedMsg{ExtOrderId: "unknown"})
	assert.False(t, changed)
	assert.Empty(t, s.OpenedOrders)
}

func TestHedgeCapacitySumsChannels(t *testing.T) {
	s := New(HedgeConfig{})
	s.ChannelsHedge["a"] = ChannelHedge{Sats: 100, Rate: 1000}
	s.ChannelsHedge["b"] = ChannelHedge{Sats: 200, Rate: 2000}
	assert.Equal(t, int64(300), s.HedgeCapacity())
}

func TestRequiredMargin(t *testing.T) {
	o := KolliderOrder{Leverage: 100, Price: 500000, Quantity: 1}
	assert.Equal(t, uint64(2000), o.RequiredMargin())

	o2 := KolliderOrder{Leverage: 200, Price: 500000, Quantity: 1}
	assert.Equal(t, uint64(1000), o2.RequiredMargin())
}
