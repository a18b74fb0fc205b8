package supervisor

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDefaultsRestartDelay(t *testing.T) {
	sv := New(Config{})
	require.Equal(t, RestartDelay, sv.cfg.RestartDelay)
}

func TestNewKeepsExplicitRestartDelay(t *testing.T) {
	sv := New(Config{RestartDelay: 2 * time.Second})
	require.Equal(t, 2*time.Second, sv.cfg.RestartDelay)
}

func TestRunHTTPServerShutsDownOnCancel(t *testing.T) {
	srv := &http.Server{Addr: "127.0.0.1:0"}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- runHTTPServer(ctx, srv) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runHTTPServer did not return after cancellation")
	}
}
