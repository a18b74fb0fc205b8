package supervisor

import (
	"net/http"

	"github.com/kollider-hedge/hedged/httpapi"
	"github.com/kollider-hedge/hedged/ledger"
	"github.com/kollider-hedge/hedged/update"
)

// newHTTPServer wires up the component G handler behind a plain
// *http.Server, the same shape the teacher's REST gateway listener in
// lnd.go wraps its grpc-gateway mux in.
func newHTTPServer(addr string, state *ledger.State, log update.Log, wake func()) *http.Server {
	return &http.Server{
		Addr:    addr,
		Handler: httpapi.New(state, log, wake),
	}
}
