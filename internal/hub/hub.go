// Package hub provides the in-process broadcast hub that fans composed
// overlay events out to every connected stream consumer.
//
// The hub rides on an embedded NATS server: the vote path publishes JSON to a
// single subject, and each overlay connection holds a channel subscription
// with a bounded buffer. Delivery is best-effort: a subscriber whose buffer
// is full loses that message, and only that subscriber is affected. Per
// subscriber, delivery order matches publish order.
package hub

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// subscriberBufferSize bounds how many undelivered events a single slow
// consumer may hold before messages are dropped for it.
const subscriberBufferSize = 64

var (
	// ErrIdleTimeout indicates that no event arrived within the wait window.
	ErrIdleTimeout = errors.New("no event before idle timeout")
	// ErrSubscriptionClosed indicates the subscription no longer delivers.
	ErrSubscriptionClosed = errors.New("subscription closed")
)

// Hub publishes events to all current subscribers.
type Hub struct {
	conn    *nats.Conn
	subject string
	log     *logger.Logger
}

// Subscription is the capability handle held by one overlay connection. It
// can only receive its own queue's events; it has no view of other
// subscribers.
type Subscription struct {
	id  string
	sub *nats.Subscription
	ch  chan *nats.Msg
}

// New creates a Hub that broadcasts on the given subject.
func New(conn *nats.Conn, subject string, log *logger.Logger) *Hub {
	return &Hub{
		conn:    conn,
		subject: subject,
		log:     log,
	}
}

// Subscribe registers a new subscriber queue and returns its handle.
func (h *Hub) Subscribe() (*Subscription, error) {
	ch := make(chan *nats.Msg, subscriberBufferSize)

	sub, err := h.conn.ChanSubscribe(h.subject, ch)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to subject '%s': %w", h.subject, err)
	}

	subscription := &Subscription{
		id:  uuid.NewString(),
		sub: sub,
		ch:  ch,
	}

	h.log.Info("Subscriber %s registered", subscription.id)

	return subscription, nil
}

// Unsubscribe removes the subscriber queue. It is idempotent: unsubscribing
// an already-removed handle is a no-op.
func (h *Hub) Unsubscribe(subscription *Subscription) {
	if subscription == nil || subscription.sub == nil {
		return
	}

	err := subscription.sub.Unsubscribe()
	if err != nil && !errors.Is(err, nats.ErrBadSubscription) {
		h.log.Warn("Failed to unsubscribe %s: %v", subscription.id, err)

		return
	}

	h.log.Info("Subscriber %s unregistered", subscription.id)
}

// Publish delivers the event to every currently registered subscriber. It
// never blocks on a slow consumer; NATS drops the message for any subscriber
// whose buffer cannot accept it.
func (h *Hub) Publish(event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = h.conn.Publish(h.subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish event to '%s': %w", h.subject, err)
	}

	return nil
}

// ID returns the subscriber's unique identity, used for log correlation.
func (s *Subscription) ID() string {
	return s.id
}

// Next blocks until the next queued event arrives, the timeout elapses
// (ErrIdleTimeout), or done is closed (ErrSubscriptionClosed). The caller
// loops on ErrIdleTimeout to emit its keep-alive signal.
func (s *Subscription) Next(done <-chan struct{}, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg, ok := <-s.ch:
		if !ok {
			return nil, ErrSubscriptionClosed
		}

		return msg.Data, nil
	case <-timer.C:
		return nil, ErrIdleTimeout
	case <-done:
		return nil, ErrSubscriptionClosed
	}
}
