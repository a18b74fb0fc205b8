// Package actionworker implements the serialised consumer that, on each
// ledger-changed notification, invokes the decision engine and executes its
// actions against the exchange. Grounded on htlcswitch.Switch's actor shape
// (SPEC_FULL.md §4.5), reduced to an atomic running flag and a single-slot
// wake notifier; cancellation comes from the context passed to Run.
package actionworker

import (
	"context"
	"sync/atomic"

	"github.com/kollider-hedge/hedged/engine"
	"github.com/kollider-hedge/hedged/internal/build"
	"github.com/kollider-hedge/hedged/ledger"
)

var log = build.NewSubLogger("WORK")

// ExecuteAction submits one StateAction to the exchange. Implementations
// live in package kollider; this package depends only on the function type
// so engine/ledger stay free of any transport dependency.
type ExecuteAction func(ctx context.Context, action ledger.StateAction) error

// Worker owns the right to drain ledger.State.ScheduledActions. Exactly one
// Worker should run against a given ledger at a time. It is driven directly
// by the supervisor (SPEC_FULL.md §5) as one of its three cancellable
// tasks, rather than owning its own Start/Stop lifecycle: a bad
// decision-engine or submit error is fatal to the *cycle*, and bubbles up
// through Run so the supervisor can restart every task together against a
// freshly-replayed ledger.
type Worker struct {
	running int32

	// wake is the single-slot level-triggered notifier: multiple Wake
	// calls before the worker drains it collapse into a single cycle.
	wake chan struct{}

	state   *ledger.State
	execute ExecuteAction
}

// New creates a Worker that drains state's scheduled actions via execute.
func New(state *ledger.State, execute ExecuteAction) *Worker {
	return &Worker{
		wake:    make(chan struct{}, 1),
		state:   state,
		execute: execute,
	}
}

// Wake schedules a cycle. Safe to call from any goroutine, any number of
// times between cycles; excess wakes are coalesced.
func (w *Worker) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Run drives cycles on every wake until ctx is cancelled or a cycle returns
// a fatal error, in which case Run returns that error.
func (w *Worker) Run(ctx context.Context) error {
	atomic.StoreInt32(&w.running, 1)
	defer atomic.StoreInt32(&w.running, 0)

	log.Infof("Starting action worker")
	for {
		select {
		case <-w.wake:
			if err := w.cycle(ctx); err != nil {
				log.Errorf("action worker cycle failed, restarting: %v", err)
				return err
			}
		case <-ctx.Done():
			log.Infof("Stopping action worker")
			return nil
		}
	}
}

// cycle runs one iteration of the algorithm in SPEC_FULL.md §4.5:
// lock, decide, submit each scheduled action in order (ledger stays locked
// across the submit, trading latency for the guarantee that no concurrent
// HTLC write can schedule a duplicate order), finalize, clear, unlock.
func (w *Worker) cycle(ctx context.Context) error {
	w.state.Mu.Lock()
	defer w.state.Mu.Unlock()

	if err := engine.CalculateNextActions(w.state); err != nil {
		return err
	}

	for _, action := range w.state.ScheduledActions {
		submitErr := w.execute(ctx, action)
		w.finalize(action)
		if submitErr != nil {
			w.state.ScheduledActions = nil
			return submitErr
		}
	}
	w.state.ScheduledActions = nil

	return nil
}

// finalize records the effect of a submitted action regardless of whether
// submission succeeded: the exchange is the source of truth, and a
// Received acknowledgement later reconciles OpeningOrders either way.
func (w *Worker) finalize(action ledger.StateAction) {
	switch a := action.(type) {
	case ledger.OpenOrder:
		w.state.OpeningOrders[a.Order.ExtId] = a.Order
	case ledger.CloseOrder:
		// Nothing to record: cancellation has no client-side tracking
		// analogous to OpeningOrders.
	}
}
