package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kollider-hedge/hedged/ledger"
	"github.com/kollider-hedge/hedged/update"
)

type fakeLog struct {
	entries  []update.StateUpdate
	appendFn func(update.UpdateBody) error
}

func (f *fakeLog) Append(ctx context.Context, body update.UpdateBody) error {
	if f.appendFn != nil {
		if err := f.appendFn(body); err != nil {
			return err
		}
	}
	f.entries = append(f.entries, update.StateUpdate{Created: time.Now(), Body: body})
	return nil
}

func (f *fakeLog) Scan(ctx context.Context) ([]update.StateUpdate, error) {
	return f.entries, nil
}

func newTestServer() (*Server, *ledger.State, *fakeLog, *int) {
	state := ledger.New(ledger.HedgeConfig{HedgePair: ".BTCUSD", HedgeSym: "BTCUSD.PERP"})
	log := &fakeLog{}
	wakes := 0
	s := New(state, log, func() { wakes++ })
	return s, state, log, &wakes
}

func TestHandleHtlcAppliesPersistsAndWakes(t *testing.T) {
	s, state, log, wakes := newTestServer()

	body, _ := json.Marshal(htlcRequest{ChannelId: "aboba", Sats: 100, Rate: 2500})
	req := httptest.NewRequest(http.MethodPost, "/hedge/htlc", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, log.entries, 1)
	require.Equal(t, 1, *wakes)

	hedge, ok := state.ChannelsHedge["aboba"]
	require.True(t, ok)
	require.Equal(t, int64(100), hedge.Sats)
}

func TestHandleHtlcRejectsInsufficientSats(t *testing.T) {
	s, state, _, wakes := newTestServer()
	state.ChannelsHedge["aboba"] = ledger.ChannelHedge{Sats: 50, Rate: 2500}

	body, _ := json.Marshal(htlcRequest{ChannelId: "aboba", Sats: -100, Rate: 2500})
	req := httptest.NewRequest(http.MethodPost, "/hedge/htlc", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, 0, *wakes)

	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, codeStateUpdateError, env.Message)
}

func TestHandleHtlcSurfacesDatabaseError(t *testing.T) {
	state := ledger.New(ledger.HedgeConfig{})
	log := &fakeLog{appendFn: func(update.UpdateBody) error { return errBoom }}
	s := New(state, log, func() {})

	body, _ := json.Marshal(htlcRequest{ChannelId: "aboba", Sats: 100, Rate: 2500})
	req := httptest.NewRequest(http.MethodPost, "/hedge/htlc", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, codeDatabaseError, env.Message)
}

func TestHandleHtlcRejectsMalformedBody(t *testing.T) {
	s, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/hedge/htlc", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHtlcRejectsWrongMethod(t *testing.T) {
	s, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/hedge/htlc", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleStateReturnsSnapshot(t *testing.T) {
	s, state, _, _ := newTestServer()
	state.ChannelsHedge["aboba"] = ledger.ChannelHedge{Sats: 300, Rate: 2500}

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view stateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, int64(300), view.ChannelsHedge["aboba"].Sats)
}

func TestHandleStatsComputesChannelsUsd(t *testing.T) {
	s, state, _, _ := newTestServer()
	state.ChannelsHedge["aboba"] = ledger.ChannelHedge{Sats: 250000, Rate: 2500}
	balance := 1.5
	state.Balance = &balance

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats statsView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, uint64(250000), stats.ChannelsSats)
	require.InDelta(t, 250000.0/(1e8/2500.0), stats.ChannelsUsd, 0.0001)
	require.Equal(t, 1.5, stats.AccountBalance)
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	s, _, _, _ := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

var errBoom = boomError{}
