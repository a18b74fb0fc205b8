// Package supervisor is the crash-only restart loop (component K): it owns
// the three long-running tasks — the exchange session, the action worker,
// and the HTTP ingress server — and restarts all three together against a
// freshly-replayed ledger.State whenever any one of them dies. Grounded on
// the teacher's crash-only philosophy (htlcswitch.Switch and peer.go both
// disconnect rather than retry internally, leaving recovery to an outer
// layer) and on spec.md §5's own "AbortHandle" framing for the three tasks.
package supervisor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kollider-hedge/hedged/actionworker"
	"github.com/kollider-hedge/hedged/internal/build"
	"github.com/kollider-hedge/hedged/kollider"
	"github.com/kollider-hedge/hedged/ledger"
	"github.com/kollider-hedge/hedged/metrics"
	"github.com/kollider-hedge/hedged/update"
)

var log = build.NewSubLogger("SPVR")

// RestartDelay is how long the supervisor waits after a task dies before
// bringing the whole group back up, per SPEC_FULL.md §5.
const RestartDelay = 5 * time.Second

// Config bundles everything a restart cycle needs to rebuild the three
// tasks from scratch.
type Config struct {
	HedgeConfig  ledger.HedgeConfig
	Log          update.Log
	ExchangeAddr string
	Credentials  kollider.Credentials
	HTTPAddr     string
	MetricsAddr  string
	RestartDelay time.Duration
	OnRestart    func(attempt int)
}

// Supervisor runs Config's task group, restarting it on any task failure
// until its context is cancelled.
type Supervisor struct {
	cfg Config
}

// New returns a Supervisor ready to Run.
func New(cfg Config) *Supervisor {
	if cfg.RestartDelay == 0 {
		cfg.RestartDelay = RestartDelay
	}
	return &Supervisor{cfg: cfg}
}

// Run replays the ledger and starts the task group, blocking until ctx is
// cancelled. Every task death triggers a full restart: fresh contexts,
// fresh ledger replay, fresh exchange session.
func (sv *Supervisor) Run(ctx context.Context) error {
	attempt := 0
	for {
		attempt++
		if attempt > 1 {
			metrics.SupervisorRestartsTotal.Inc()
			if sv.cfg.OnRestart != nil {
				sv.cfg.OnRestart(attempt)
			}
		}

		err := sv.runOnce(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			log.Errorf("task group exited (attempt %d): %v", attempt, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(sv.cfg.RestartDelay):
		}
	}
}

// runOnce replays the ledger and runs the exchange session, action worker,
// and HTTP server until one of them returns (including a clean ctx-driven
// shutdown), then tears down the others and waits for them to exit.
func (sv *Supervisor) runOnce(parent context.Context) error {
	state, err := ledger.Replay(parent, sv.cfg.HedgeConfig, sv.cfg.Log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// client and worker each need the other before either can be fully
	// constructed (the client needs worker.Wake, the worker needs
	// client.Submit); wake is resolved through this forward-declared
	// pointer since neither goroutine starts calling it until Run below.
	var worker *actionworker.Worker
	wake := func() {
		if worker != nil {
			worker.Wake()
		}
	}

	client, err := kollider.Dial(
		ctx, sv.cfg.ExchangeAddr, sv.cfg.Credentials,
		sv.cfg.HedgeConfig.HedgeSym, sv.cfg.HedgeConfig.HedgePair,
		state, wake,
	)
	if err != nil {
		return err
	}
	worker = actionworker.New(state, client.Submit)

	httpServer := newHTTPServer(sv.cfg.HTTPAddr, state, sv.cfg.Log, worker.Wake)

	var wg sync.WaitGroup
	errCh := make(chan error, 4)

	wg.Add(3)
	go func() { defer wg.Done(); errCh <- client.Run(ctx) }()
	go func() { defer wg.Done(); errCh <- worker.Run(ctx) }()
	go func() { defer wg.Done(); errCh <- runHTTPServer(ctx, httpServer) }()

	if sv.cfg.MetricsAddr != "" {
		metricsServer := &http.Server{Addr: sv.cfg.MetricsAddr, Handler: metrics.Handler()}
		wg.Add(1)
		go func() { defer wg.Done(); errCh <- runHTTPServer(ctx, metricsServer) }()
	}

	var taskErr error
	select {
	case <-ctx.Done():
	case taskErr = <-errCh:
		cancel()
	}

	wg.Wait()
	return taskErr
}

// runHTTPServer runs srv until ctx is cancelled, then shuts it down
// gracefully, translating http.ErrServerClosed into a nil return the same
// way net/http's own documentation recommends.
func runHTTPServer(ctx context.Context, srv *http.Server) error {
	serveErrCh := make(chan error, 1)
	go func() { serveErrCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-serveErrCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
