package kollider

import (
	"container/list"
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/gorilla/websocket"

	"github.com/kollider-hedge/hedged/internal/build"
	"github.com/kollider-hedge/hedged/ledger"
)

var log = build.NewSubLogger("EXCH")

const outgoingQueueLen = 50

// Credentials authenticates the session against the exchange. The exact
// handshake envelope is an external collaborator's concern (spec.md §1);
// this package only needs the three values to build it.
type Credentials struct {
	APIKey    string
	APISecret string
	Password  string
}

// outgoingFrame pairs a raw outbound JSON frame with an optional channel
// that is closed once the write completes, mirroring peer.go's outgoinMsg
// semaphore idiom.
type outgoingFrame struct {
	payload []byte
	sent    chan struct{}
}

// Client is the duplex exchange session: one reader goroutine decoding
// inbound frames and applying them to the ledger, one writer goroutine
// draining the outbound queue, and a queueHandler buffering sends from
// outside callers (the action worker) ahead of the writer. Grounded on
// peer.go's readHandler/writeHandler/queueHandler trio.
type Client struct {
	conn  *websocket.Conn
	state *ledger.State
	wake  func()

	creds     Credentials
	hedgeSym  string
	hedgePair string

	sendQueue     chan outgoingFrame
	outgoingQueue chan outgoingFrame

	quit chan struct{}
	wg   sync.WaitGroup
}

// Dial connects to addr and returns a Client ready to Run.
func Dial(ctx context.Context, addr string, creds Credentials, hedgeSym, hedgePair string, state *ledger.State, wake func()) (*Client, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}

	return &Client{
		conn:          conn,
		state:         state,
		wake:          wake,
		creds:         creds,
		hedgeSym:      hedgeSym,
		hedgePair:     hedgePair,
		sendQueue:     make(chan outgoingFrame, 1),
		outgoingQueue: make(chan outgoingFrame, outgoingQueueLen),
		quit:          make(chan struct{}),
	}, nil
}

// Run drives the session until ctx is cancelled or the transport fails, in
// which case it returns a non-nil error: the supervisor interprets any
// return from Run as "this task died, restart everything" (SPEC_FULL.md
// §4.6) — there is no internal reconnect loop here, matching peer.go's own
// disconnect-rather-than-retry behavior.
func (c *Client) Run(ctx context.Context) error {
	defer c.conn.Close()

	if err := c.authenticate(); err != nil {
		return err
	}
	if err := c.primeLedger(); err != nil {
		return err
	}

	errCh := make(chan error, 2)

	c.wg.Add(3)
	go c.writeHandler(errCh)
	go c.readHandler(errCh)
	go c.queueHandler()

	select {
	case <-ctx.Done():
		close(c.quit)
		c.conn.Close()
		c.wg.Wait()
		return nil
	case err := <-errCh:
		close(c.quit)
		c.conn.Close()
		c.wg.Wait()
		return err
	}
}

func (c *Client) authenticate() error {
	// The concrete signing/handshake envelope is an external collaborator
	// (spec.md §1's "authentication handshake" is explicitly out of
	// scope); this submits credentials using the same framing every
	// other outbound frame uses.
	payload, err := wrap("authenticate", struct {
		ApiKey    string `json:"api_key"`
		Secret    string `json:"secret"`
		Passphrase string `json:"passphrase"`
	}{c.creds.APIKey, c.creds.APISecret, c.creds.Password})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

// primeLedger issues the Subscribe/FetchOpenOrders/FetchPositions sequence
// a freshly-authenticated session must send before the ledger is usable.
func (c *Client) primeLedger() error {
	frames, err := PrimingFrames(c.hedgePair)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if err := c.conn.WriteMessage(websocket.TextMessage, f); err != nil {
			return errors.Wrap(err, 0)
		}
	}
	return nil
}

// readHandler decodes inbound frames in series and applies each to the
// ledger under its lock, waking the action worker whenever the ledger
// observably changed.
func (c *Client) readHandler(errCh chan<- error) {
	defer c.wg.Done()
	defer log.Tracef("readHandler done")

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			errCh <- errors.Wrap(err, 0)
			return
		}

		msg, err := DecodeInbound(raw)
		if err != nil {
			log.Warnf("discarding malformed inbound frame: %v", err)
			continue
		}
		if msg == nil {
			continue
		}

		c.state.Mu.Lock()
		changed := c.state.ApplyExchangeMsg(msg)
		c.state.Mu.Unlock()

		if changed {
			c.wake()
		}
	}
}

// writeHandler drains sendQueue, writing each frame to the wire in order.
func (c *Client) writeHandler(errCh chan<- error) {
	defer c.wg.Done()
	defer log.Tracef("writeHandler done")

	for {
		select {
		case frame := <-c.sendQueue:
			if err := c.conn.WriteMessage(websocket.TextMessage, frame.payload); err != nil {
				errCh <- errors.Wrap(err, 0)
				return
			}
			if frame.sent != nil {
				close(frame.sent)
			}
		case <-c.quit:
			return
		}
	}
}

// queueHandler accepts frames from outside callers and feeds them into
// sendQueue, buffering ahead of the writer so callers never block on
// network I/O. Grounded on peer.go's queueHandler: a pending list is
// aggressively drained into sendQueue before accepting new frames.
func (c *Client) queueHandler() {
	defer c.wg.Done()

	pending := list.New()
	for {
		for {
			elem := pending.Front()
			if elem == nil {
				break
			}

			select {
			case c.sendQueue <- elem.Value.(outgoingFrame):
				pending.Remove(elem)
			case <-c.quit:
				return
			default:
				goto drained
			}
		}
	drained:

		select {
		case <-c.quit:
			return
		case frame := <-c.outgoingQueue:
			pending.PushBack(frame)
		}
	}
}

// Submit sends one StateAction out over the exchange connection, used as
// the actionworker.ExecuteAction callback.
func (c *Client) Submit(ctx context.Context, action ledger.StateAction) error {
	payload, err := EncodeOutbound(action)
	if err != nil {
		return err
	}

	sent := make(chan struct{})
	select {
	case c.outgoingQueue <- outgoingFrame{payload: payload, sent: sent}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-sent:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
