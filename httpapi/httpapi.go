// Package httpapi is the HTTP ingress (component G): it accepts HTLC
// notifications, persists and applies them, wakes the action worker, and
// serves read-only state/stats queries. Plain net/http, the same idiom the
// teacher's lnd.go already uses for its REST gateway (SPEC_FULL.md §4.7).
package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kollider-hedge/hedged/internal/build"
	"github.com/kollider-hedge/hedged/ledger"
	"github.com/kollider-hedge/hedged/update"
)

var log = build.NewSubLogger("HTTP")

// errorCode enumerates the wire-level error codes spec.md §6 names.
type errorCode string

const (
	codeStateUpdateError   errorCode = "STATE_UPDATE_ERROR"
	codeDatabaseError      errorCode = "SERVER_DATABASE_ERROR"
	codeBadRequest         errorCode = "BAD_REQUEST"
	codeNotFound           errorCode = "NOT_FOUND"
	codeMethodNotAllowed   errorCode = "METHOD_NOT_ALLOWED"
	codeUnhandledRejection errorCode = "UNHANDLED_REJECTION"
)

type errorEnvelope struct {
	Code    int       `json:"code"`
	Message errorCode `json:"message"`
}

// Server owns the three endpoints named in spec.md §6.
type Server struct {
	state *ledger.State
	log   update.Log
	wake  func()

	mux *http.ServeMux
}

// New builds a Server ready to be wrapped in an http.Server.
func New(state *ledger.State, log update.Log, wake func()) *Server {
	s := &Server{state: state, log: log, wake: wake, mux: http.NewServeMux()}
	s.mux.HandleFunc("/hedge/htlc", s.handleHtlc)
	s.mux.HandleFunc("/state", s.handleState)
	s.mux.HandleFunc("/stats", s.handleStats)
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound)
	})
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type htlcRequest struct {
	ChannelId string `json:"channel_id"`
	Sats      int64  `json:"sats"`
	Rate      uint64 `json:"rate"`
}

// handleHtlc implements the write path of spec.md §4.7: apply to the
// ledger, then persist to the log, then wake the worker exactly once. This
// daemon picks "apply then persist" of the two orderings spec.md §9 leaves
// open (see SPEC_FULL.md/DESIGN.md for the rationale); it accepts that an
// in-memory-accepted update can be lost on crash before persistence, and
// replay on restart cannot recover it since it never reached the log.
func (s *Server) handleHtlc(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed)
		return
	}

	var req htlcRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest)
		return
	}

	body := update.HtlcUpdate{ChannelId: req.ChannelId, Sats: req.Sats, Rate: int64(req.Rate)}
	upd := update.StateUpdate{Created: time.Now().UTC(), Body: body}

	s.state.Mu.Lock()
	applyErr := s.state.ApplyUpdate(upd)
	s.state.Mu.Unlock()

	if applyErr != nil {
		log.Warnf("rejecting htlc for channel %s: %v", req.ChannelId, applyErr)
		writeError(w, http.StatusBadRequest, codeStateUpdateError)
		return
	}

	if err := s.log.Append(r.Context(), body); err != nil {
		log.Errorf("failed to persist htlc for channel %s: %v", req.ChannelId, err)
		writeError(w, http.StatusBadRequest, codeDatabaseError)
		return
	}

	s.wake()
	writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed)
		return
	}

	s.state.Mu.Lock()
	view := newStateView(s.state)
	s.state.Mu.Unlock()

	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed)
		return
	}

	s.state.Mu.Lock()
	stats, err := computeStats(s.state)
	s.state.Mu.Unlock()

	if err != nil {
		log.Errorf("failed to compute stats: %v", err)
		writeError(w, http.StatusInternalServerError, codeUnhandledRejection)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode) {
	writeJSON(w, status, errorEnvelope{Code: status, Message: code})
}
