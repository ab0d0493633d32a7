package transport

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/protocol"
)

// fakeConn is an in-memory streamConn driven by the test acting as the
// server: onWrite sees every outbound frame, serverPush injects inbound
// frames, Close simulates the peer dropping the connection.
type fakeConn struct {
	in        chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	onWrite   func(frame []byte)
}

func newFakeConn(onWrite func(frame []byte)) *fakeConn {
	return &fakeConn{
		in:      make(chan []byte, 64),
		closed:  make(chan struct{}),
		onWrite: onWrite,
	}
}

func (c *fakeConn) ReadMessage() ([]byte, error) {
	select {
	case data := <-c.in:
		return data, nil
	case <-c.closed:
		return nil, net.ErrClosed
	}
}

func (c *fakeConn) WriteMessage(data []byte) error {
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	if c.onWrite != nil {
		c.onWrite(data)
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) serverPush(frame []byte) {
	select {
	case c.in <- frame:
	case <-c.closed:
	}
}

func (c *fakeConn) pushResponse(id uint64, result interface{}) {
	raw, _ := json.Marshal(result)
	frame, _ := json.Marshal(&protocol.Response{JSONRPC: protocol.Version, ID: id, Result: raw})
	c.serverPush(frame)
}

func (c *fakeConn) pushSubscriptionEvent(subID string, result interface{}) {
	raw, _ := json.Marshal(result)
	params, _ := json.Marshal(protocol.SubscriptionParams{Subscription: subID, Result: raw})
	frame, _ := json.Marshal(&protocol.Notification{
		JSONRPC: protocol.Version,
		Method:  protocol.MethodSubscription,
		Params:  params,
	})
	c.serverPush(frame)
}

// fakeDialer hands out a fresh fakeConn per dial attempt.
type fakeDialer struct {
	mu      sync.Mutex
	onWrite func(frame []byte)
	conns   []*fakeConn
	dialErr error
}

func (d *fakeDialer) dial(_ context.Context) (streamConn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	conn := newFakeConn(d.onWrite)
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) conn(i int) *fakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.conns[i]
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.conns)
}

func newTestStreamTransport(dialer *fakeDialer, mutate func(*Config)) *streamTransport {
	cfg := DefaultConfig(KindWebSocket, "ws://test")
	cfg.Logger = logging.NewNop()
	cfg.RequestTimeout = 2 * time.Second
	cfg.DialTimeout = time.Second
	cfg.Reconnect.Enabled = false
	if mutate != nil {
		mutate(&cfg)
	}
	t, err := newStreamTransport(cfg, dialer.dial)
	if err != nil {
		panic(err)
	}
	return t
}

// newReq builds a request, panicking on encode failure; test params are
// always encodable.
func newReq(id uint64, method string, params ...interface{}) *protocol.Request {
	req, err := protocol.NewRequest(id, method, params)
	if err != nil {
		panic(err)
	}
	return req
}

// parseRequest decodes an outbound frame captured by onWrite.
func parseRequest(frame []byte) *protocol.Request {
	var req protocol.Request
	if err := json.Unmarshal(frame, &req); err != nil {
		panic(err)
	}
	return &req
}

func waitForState(t *streamTransport, want ConnState, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if t.State() == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return t.State() == want
}
