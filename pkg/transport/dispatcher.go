package transport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/RustForNeo/neoclient/pkg/protocol"
)

// outcome is the single-fulfillment result slot of a pending call.
type outcome struct {
	resp *protocol.Response
	err  error
}

// dispatcher assigns correlation identifiers, tracks pending calls and
// matches inbound responses to waiting callers. Entries are removed
// atomically before fulfillment, so a slot is consumed exactly once;
// a duplicate or late response finds no entry and is dropped.
type dispatcher struct {
	mu      sync.Mutex
	nextID  atomic.Uint64
	pending map[uint64]chan outcome
	lg      logging.Logger
}

func newDispatcher(lg logging.Logger) *dispatcher {
	return &dispatcher{
		pending: make(map[uint64]chan outcome),
		lg:      lg,
	}
}

// NextID returns the next correlation identifier, monotonically increasing
// per transport instance.
func (d *dispatcher) NextID() uint64 {
	return d.nextID.Add(1)
}

// register creates the pending-call slot for id. The returned channel is
// buffered so fulfillment never blocks on an abandoned caller.
func (d *dispatcher) register(id uint64) <-chan outcome {
	ch := make(chan outcome, 1)
	d.mu.Lock()
	d.pending[id] = ch
	d.mu.Unlock()
	return ch
}

// remove discards the pending-call slot without fulfilling it. Used when a
// send fails before the request reaches the wire, and on timeout.
func (d *dispatcher) remove(id uint64) {
	d.mu.Lock()
	delete(d.pending, id)
	d.mu.Unlock()
}

// deliver routes a response to its waiting caller. Returns false when no
// call is pending under that id: already fulfilled, timed out, or unknown.
// The caller logs such frames as protocol anomalies; they are not fatal.
func (d *dispatcher) deliver(resp *protocol.Response) bool {
	d.mu.Lock()
	ch, ok := d.pending[resp.ID]
	if ok {
		delete(d.pending, resp.ID)
	}
	d.mu.Unlock()

	if !ok {
		return false
	}
	ch <- outcome{resp: resp}
	return true
}

// fail resolves a single pending call with an error.
func (d *dispatcher) fail(id uint64, err error) bool {
	d.mu.Lock()
	ch, ok := d.pending[id]
	if ok {
		delete(d.pending, id)
	}
	d.mu.Unlock()

	if !ok {
		return false
	}
	ch <- outcome{err: err}
	return true
}

// failAll resolves every pending call with err. Used on connection loss
// and on shutdown.
func (d *dispatcher) failAll(err error) {
	d.mu.Lock()
	calls := d.pending
	d.pending = make(map[uint64]chan outcome)
	d.mu.Unlock()

	for _, ch := range calls {
		ch <- outcome{err: err}
	}
}

// pendingCount reports the number of in-flight calls.
func (d *dispatcher) pendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// await blocks until the pending call registered under id resolves, the
// context is cancelled, or the timeout elapses. The slot must have been
// registered before the request frame hit the wire, otherwise a fast
// response could race the registration. On timeout or cancellation the
// slot is cleaned up here, so no entry outlives its caller.
func (d *dispatcher) await(ctx context.Context, id uint64, ch <-chan outcome, timeout time.Duration, method string) (*protocol.Response, error) {
	var timer *time.Timer
	var timeoutC <-chan time.Time
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && timeout > 0 {
		timer = time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		return out.resp, nil
	case <-timeoutC:
		d.remove(id)
		d.lg.Warn("request timed out", "id", id, "method", method, "timeout", timeout)
		return nil, errors.Newf(errors.CodeRequestTimeout, "no response to %s within %v", method, timeout)
	case <-ctx.Done():
		d.remove(id)
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrapf(ctx.Err(), errors.CodeRequestTimeout, "no response to %s before deadline", method)
		}
		return nil, ctx.Err()
	}
}
