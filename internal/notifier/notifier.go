// Package notifier fans order lifecycle events out to in-process subscribers.
//
// Delivery is synchronous and in subscription order. A subscriber that returns
// an error or panics is logged and skipped; the remaining subscribers still run
// and the caller of Notify never sees the failure. Nothing is persisted or
// retried, and a subscriber added after an event was published never gets it.
package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ViduraMC/Bakery-App/internal/logging"
)

type EventName string

const (
	OrderCreated       EventName = "ORDER_CREATED"
	OrderStatusUpdated EventName = "ORDER_STATUS_UPDATED"
)

type Event struct {
	Name    EventName
	Payload any
}

// Subscriber receives events. Implementations must be comparable (use pointer
// receivers) so they can be unsubscribed.
type Subscriber interface {
	Name() string
	Update(ctx context.Context, ev Event) error
}

type Notifier struct {
	mu          sync.RWMutex
	subscribers []Subscriber
	log         *slog.Logger
}

func New(log *slog.Logger) *Notifier {
	if log == nil {
		log = logging.New("notifier")
	}
	return &Notifier{log: log}
}

func (n *Notifier) Subscribe(s Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	// copy on write so an in-flight Notify keeps its snapshot
	next := make([]Subscriber, len(n.subscribers), len(n.subscribers)+1)
	copy(next, n.subscribers)
	n.subscribers = append(next, s)
}

// Unsubscribe removes every registration of s. Unknown subscribers are ignored.
func (n *Notifier) Unsubscribe(s Subscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	next := make([]Subscriber, 0, len(n.subscribers))
	for _, cur := range n.subscribers {
		if cur != s {
			next = append(next, cur)
		}
	}
	n.subscribers = next
}

func (n *Notifier) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.subscribers)
}

func (n *Notifier) Notify(ctx context.Context, name EventName, payload any) {
	n.mu.RLock()
	subs := n.subscribers
	n.mu.RUnlock()

	ev := Event{Name: name, Payload: payload}
	for _, s := range subs {
		if err := deliver(ctx, s, ev); err != nil {
			n.log.Error("subscriber failed",
				"event", string(name),
				"subscriber", s.Name(),
				"err", err,
			)
		}
	}
}

func deliver(ctx context.Context, s Subscriber, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.Update(ctx, ev)
}

type funcSubscriber struct {
	name string
	fn   func(ctx context.Context, ev Event) error
}

func (f *funcSubscriber) Name() string { return f.name }

func (f *funcSubscriber) Update(ctx context.Context, ev Event) error { return f.fn(ctx, ev) }

// Func adapts a plain function into a Subscriber.
func Func(name string, fn func(ctx context.Context, ev Event) error) Subscriber {
	return &funcSubscriber{name: name, fn: fn}
}
