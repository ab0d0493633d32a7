package transport

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/protocol"
)

// ConnState is the lifecycle state of a stream connection.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
	StateClosing
)

func (s ConnState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// streamConn is one established bidirectional connection. Implementations
// must preserve FIFO frame order on the wire; WriteMessage is serialized
// by the transport, ReadMessage is only called from the read loop.
type streamConn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// dialFunc establishes one streamConn. The transport redials through it.
type dialFunc func(ctx context.Context) (streamConn, error)

// streamTransport multiplexes concurrent calls and subscription pushes over
// a single persistent connection. It owns the connection state machine:
//
//	Disconnected -> Connecting -> Connected -> Closing -> Disconnected
//
// with Connected -> Disconnected on transport error, triggering bounded
// exponential backoff reconnection. Every transition out of Connected fails
// all pending calls and drops all live subscriptions; resubscribing after a
// reconnect is the facade's decision, not this layer's.
type streamTransport struct {
	cfg  Config
	dial dialFunc
	disp *dispatcher
	lg   logging.Logger

	state atomic.Int32

	mu   sync.Mutex // guards conn and gen
	conn streamConn
	gen  uint64 // connection generation, detects stale read loops

	writeMu sync.Mutex // one frame writer at a time

	sinkMu sync.RWMutex
	sink   NotificationSink

	closed    chan struct{}
	closeOnce sync.Once
}

var _ Streaming = (*streamTransport)(nil)

func newStreamTransport(cfg Config, dial dialFunc) (*streamTransport, error) {
	lg := cfg.Logger
	if lg == nil {
		lg = logging.NewNop()
	}
	lg = lg.With("transport", string(cfg.Kind))
	return &streamTransport{
		cfg:    cfg,
		dial:   dial,
		disp:   newDispatcher(lg),
		lg:     lg,
		closed: make(chan struct{}),
	}, nil
}

func (t *streamTransport) Kind() Kind       { return t.cfg.Kind }
func (t *streamTransport) NextID() uint64   { return t.disp.NextID() }
func (t *streamTransport) State() ConnState { return ConnState(t.state.Load()) }

func (t *streamTransport) SetNotificationSink(sink NotificationSink) {
	t.sinkMu.Lock()
	t.sink = sink
	t.sinkMu.Unlock()
}

// Connect dials the endpoint and starts the read loop.
func (t *streamTransport) Connect(ctx context.Context) error {
	if t.isClosed() {
		return errors.New(errors.CodeConnectionClosed, "transport is closed")
	}
	if !t.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return errors.Newf(errors.CodeTransportError, "connect in state %s", t.State())
	}

	dialCtx := ctx
	if t.cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, t.cfg.DialTimeout)
		defer cancel()
	}

	conn, err := t.dial(dialCtx)
	if err != nil {
		t.state.Store(int32(StateDisconnected))
		return wrapNetError(err, "dial "+t.cfg.Endpoint)
	}

	t.mu.Lock()
	t.conn = conn
	t.gen++
	gen := t.gen
	t.mu.Unlock()

	t.state.Store(int32(StateConnected))
	t.lg.Info("connected", "endpoint", t.cfg.Endpoint)

	go t.readLoop(conn, gen)
	return nil
}

// Call sends the request over the shared connection and waits for the
// response carrying the same correlation identifier.
func (t *streamTransport) Call(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	if t.isClosed() {
		return nil, errors.New(errors.CodeConnectionClosed, "transport is closed")
	}
	if t.State() != StateConnected {
		return nil, errors.Newf(errors.CodeConnectionLost, "not connected (state %s)", t.State())
	}

	frame, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeProtocolError, "encode request %s", req.Method)
	}

	// Register before writing: the response may beat the registration
	// otherwise.
	ch := t.disp.register(req.ID)

	if err := t.writeFrame(frame); err != nil {
		t.disp.remove(req.ID)
		return nil, err
	}

	return t.disp.await(ctx, req.ID, ch, t.cfg.RequestTimeout, req.Method)
}

func (t *streamTransport) writeFrame(frame []byte) error {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	if conn == nil {
		return errors.New(errors.CodeConnectionLost, "no active connection")
	}

	t.writeMu.Lock()
	err := conn.WriteMessage(frame)
	t.writeMu.Unlock()
	if err != nil {
		return wrapNetError(err, "write frame")
	}
	return nil
}

// readLoop reads frames until the connection dies, routing responses to the
// dispatcher and pushes to the notification sink.
func (t *streamTransport) readLoop(conn streamConn, gen uint64) {
	for {
		data, err := conn.ReadMessage()
		if err != nil {
			t.handleDisconnect(gen, err)
			return
		}
		t.route(data)
	}
}

func (t *streamTransport) route(data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		// Malformed frame: protocol anomaly, logged and dropped.
		t.lg.Warn("dropping malformed frame", "error", err)
		return
	}

	switch {
	case msg.IsResponse():
		resp := msg.Response()
		if !t.disp.deliver(resp) {
			t.lg.Warn("response for unknown call dropped", "id", resp.ID)
		}
	case msg.IsNotification():
		subID, payload, ok := msg.SubscriptionEvent()
		if !ok {
			t.lg.Debug("ignoring notification", "method", msg.Method)
			return
		}
		t.sinkMu.RLock()
		sink := t.sink
		t.sinkMu.RUnlock()
		if sink != nil {
			sink.DeliverEvent(subID, payload)
		}
	default:
		t.lg.Warn("dropping unclassifiable frame")
	}
}

// handleDisconnect runs the Connected -> Disconnected transition: fail every
// pending call with ConnectionLost, drop every subscription, then start the
// reconnect loop if configured. A stale generation means a newer connection
// already took over.
func (t *streamTransport) handleDisconnect(gen uint64, cause error) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	conn := t.conn
	t.conn = nil
	t.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}

	if t.isClosed() || t.State() == StateClosing {
		return
	}

	t.state.Store(int32(StateDisconnected))
	t.lg.Warn("connection lost", "endpoint", t.cfg.Endpoint, "error", cause)

	lost := errors.Wrap(cause, errors.CodeConnectionLost, "connection lost")
	t.disp.failAll(lost)

	t.sinkMu.RLock()
	sink := t.sink
	t.sinkMu.RUnlock()
	if sink != nil {
		sink.DropAll(lost)
	}

	if t.cfg.Reconnect.Enabled {
		go t.reconnectLoop()
	}
}

// reconnectLoop retries the dial with bounded exponential backoff.
func (t *streamTransport) reconnectLoop() {
	rc := t.cfg.Reconnect
	for attempt := 1; rc.MaxAttempts <= 0 || attempt <= rc.MaxAttempts; attempt++ {
		delay := backoffDelay(attempt, rc)
		select {
		case <-time.After(delay):
		case <-t.closed:
			return
		}

		if !t.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
			return
		}
		t.lg.Info("reconnecting", "attempt", attempt, "delay", delay)

		dialCtx := context.Background()
		var cancel context.CancelFunc = func() {}
		if t.cfg.DialTimeout > 0 {
			dialCtx, cancel = context.WithTimeout(dialCtx, t.cfg.DialTimeout)
		}
		conn, err := t.dial(dialCtx)
		cancel()
		if err != nil {
			t.state.Store(int32(StateDisconnected))
			t.lg.Warn("reconnect failed", "attempt", attempt, "error", err)
			continue
		}

		t.mu.Lock()
		t.conn = conn
		t.gen++
		gen := t.gen
		t.mu.Unlock()

		t.state.Store(int32(StateConnected))
		t.lg.Info("reconnected", "endpoint", t.cfg.Endpoint, "attempts", attempt)
		go t.readLoop(conn, gen)
		return
	}
	t.lg.Error("reconnect attempts exhausted", "endpoint", t.cfg.Endpoint)
}

// backoffDelay computes the delay before the given attempt, exponential with
// a cap and 10% jitter.
func backoffDelay(attempt int, rc ReconnectConfig) time.Duration {
	delay := float64(rc.InitialDelay) * math.Pow(rc.BackoffFactor, float64(attempt-1))
	if max := float64(rc.MaxDelay); delay > max {
		delay = max
	}
	delay += delay * 0.1 * (rand.Float64()*2 - 1)
	return time.Duration(delay)
}

// Close transitions to Closing, fails every pending call with ProviderClosed
// and terminates all subscriptions. Idempotent.
func (t *streamTransport) Close() error {
	t.closeOnce.Do(func() {
		t.state.Store(int32(StateClosing))
		close(t.closed)

		t.mu.Lock()
		conn := t.conn
		t.conn = nil
		t.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}

		closedErr := errors.New(errors.CodeProviderClosed, "provider closed")
		t.disp.failAll(closedErr)

		t.sinkMu.RLock()
		sink := t.sink
		t.sinkMu.RUnlock()
		if sink != nil {
			sink.DropAll(closedErr)
		}

		t.state.Store(int32(StateDisconnected))
	})
	return nil
}

func (t *streamTransport) isClosed() bool {
	select {
	case <-t.closed:
		return true
	default:
		return false
	}
}
