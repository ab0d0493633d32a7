package transport

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/RustForNeo/neoclient/pkg/errors"
	"github.com/RustForNeo/neoclient/pkg/logging"
	"github.com/google/uuid"
)

// Subscription is the consumer handle for one standing server-side
// registration. Events arrive on Events() in server emission order; the
// channel closes when the subscription is cancelled, the connection drops,
// or the provider shuts down. After the channel closes, Err reports why.
type Subscription struct {
	serverID string
	localID  string
	topic    string

	mu    sync.Mutex
	cond  *sync.Cond
	queue []json.RawMessage
	dead  bool
	err   error

	out  chan json.RawMessage
	quit chan struct{}

	unsubOnce sync.Once
	unsub     func(ctx context.Context) error
}

func newSubscription(serverID, topic string) *Subscription {
	s := &Subscription{
		serverID: serverID,
		localID:  uuid.NewString(),
		topic:    topic,
		out:      make(chan json.RawMessage),
		quit:     make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)
	go s.forward()
	return s
}

// ID returns the server-assigned subscription identifier.
func (s *Subscription) ID() string { return s.serverID }

// LocalID returns the client-side identifier, stable across the handle's
// lifetime and unique per process.
func (s *Subscription) LocalID() string { return s.localID }

// Topic returns the topic/filter this subscription was opened with.
func (s *Subscription) Topic() string { return s.topic }

// Events returns the ordered event sequence. Infinite until the
// subscription dies; not restartable after close.
func (s *Subscription) Events() <-chan json.RawMessage { return s.out }

// Err returns the reason the event sequence terminated: nil after a clean
// unsubscribe, a ClientError otherwise. Only meaningful once Events closes.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Unsubscribe cancels the registration on the server and terminates the
// event sequence. Safe to call more than once.
func (s *Subscription) Unsubscribe(ctx context.Context) error {
	var err error
	s.unsubOnce.Do(func() {
		if s.unsub != nil {
			err = s.unsub(ctx)
		}
		s.kill(nil)
	})
	return err
}

// SetUnsubscriber installs the provider's unsubscribe call. Set once,
// before the handle is returned to the application.
func (s *Subscription) SetUnsubscriber(fn func(ctx context.Context) error) {
	s.unsub = fn
}

// push appends one event to the queue. Never blocks: the queue is
// unbounded until consumed, preserving server emission order even under a
// slow consumer.
func (s *Subscription) push(payload json.RawMessage) {
	s.mu.Lock()
	if s.dead {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, payload)
	s.mu.Unlock()
	s.cond.Signal()
}

// kill marks the subscription dead. Events not yet handed to the consumer
// are discarded; the consumer observes sequence termination.
func (s *Subscription) kill(err error) {
	s.mu.Lock()
	if s.dead {
		s.mu.Unlock()
		return
	}
	s.dead = true
	s.err = err
	s.mu.Unlock()
	s.cond.Signal()
	close(s.quit)
}

// forward moves events from the queue to the consumer channel, one at a
// time, and closes the channel on death even when the consumer is gone.
func (s *Subscription) forward() {
	defer close(s.out)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.dead {
			s.cond.Wait()
		}
		if s.dead {
			s.mu.Unlock()
			return
		}
		ev := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- ev:
		case <-s.quit:
			return
		}
	}
}

// SubscriptionManager routes push notifications to live subscriptions by
// server-assigned id. It implements NotificationSink for the stream
// transport's read loop.
type SubscriptionManager struct {
	mu   sync.Mutex
	subs map[string]*Subscription
	lg   logging.Logger
}

var _ NotificationSink = (*SubscriptionManager)(nil)

// NewSubscriptionManager creates an empty manager.
func NewSubscriptionManager(lg logging.Logger) *SubscriptionManager {
	if lg == nil {
		lg = logging.NewNop()
	}
	return &SubscriptionManager{
		subs: make(map[string]*Subscription),
		lg:   lg.Named("subscriptions"),
	}
}

// Track registers a route from the server-assigned id to a new handle.
// Called after a successful subscribe call returns the id.
func (m *SubscriptionManager) Track(serverID, topic string) *Subscription {
	sub := newSubscription(serverID, topic)
	m.mu.Lock()
	if old, ok := m.subs[serverID]; ok {
		// A reused id means the old registration is gone server-side.
		old.kill(errors.New(errors.CodeSubscriptionInvalid, "subscription id reused by server"))
	}
	m.subs[serverID] = sub
	m.mu.Unlock()
	return sub
}

// Remove drops the route and terminates the handle cleanly. Returns false
// when the id is unknown.
func (m *SubscriptionManager) Remove(serverID string) bool {
	m.mu.Lock()
	sub, ok := m.subs[serverID]
	delete(m.subs, serverID)
	m.mu.Unlock()
	if !ok {
		return false
	}
	sub.kill(nil)
	return true
}

// DeliverEvent routes one push to its subscription. Events for unknown ids
// are dropped and logged as protocol anomalies.
func (m *SubscriptionManager) DeliverEvent(subscriptionID string, payload json.RawMessage) {
	m.mu.Lock()
	sub, ok := m.subs[subscriptionID]
	m.mu.Unlock()
	if !ok {
		m.lg.Warn("event for unknown subscription dropped", "subscription", subscriptionID)
		return
	}
	sub.push(payload)
}

// DropAll terminates every live subscription with err. Called on
// connection loss and on shutdown; resubscribing is the facade's choice.
func (m *SubscriptionManager) DropAll(err error) {
	m.mu.Lock()
	subs := m.subs
	m.subs = make(map[string]*Subscription)
	m.mu.Unlock()

	for _, sub := range subs {
		sub.kill(err)
	}
}

// Count reports the number of live subscriptions.
func (m *SubscriptionManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}
