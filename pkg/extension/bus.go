package extension

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"mercator-hq/portico/pkg/middleware"
)

// Topic names.
const (
	TopicMiddleware = "middlewares:add"
	TopicRoutes     = "router:add"
)

// Delivery outcomes reported to an Observer.
const (
	OutcomeDelivered = "delivered"
	OutcomeRejected  = "rejected"
	OutcomeDropped   = "dropped"
)

// ErrAlreadySubscribed is returned when a topic already has a subscriber.
var ErrAlreadySubscribed = errors.New("topic already has a subscriber")

// RouteAddition asks the server to register a namespaced route.
type RouteAddition struct {
	Method  string
	Path    string
	Handler http.Handler
}

// Observer is notified of every publish and how it ended.
type Observer interface {
	ObserveEvent(topic, outcome string)
}

// Bus is a publish/subscribe channel with two topics: middleware additions
// and route additions. Each topic has at most one subscriber. Events
// published while a topic has no subscriber are dropped, not buffered, so
// a subscriber only sees events published after it subscribed.
type Bus struct {
	logger   *slog.Logger
	observer Observer

	middleware topic[[]middleware.Entry]
	routes     topic[RouteAddition]
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the bus logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithObserver sets the observer notified of publish outcomes.
func WithObserver(o Observer) Option {
	return func(b *Bus) {
		b.observer = o
	}
}

// NewBus creates a bus with no subscribers.
func NewBus(opts ...Option) *Bus {
	b := &Bus{logger: slog.Default().With("component", "extension")}
	for _, opt := range opts {
		opt(b)
	}
	b.middleware.name = TopicMiddleware
	b.routes.name = TopicRoutes
	return b
}

// PublishMiddleware publishes middleware entries to be appended in order.
func (b *Bus) PublishMiddleware(entries ...middleware.Entry) {
	publish(b, &b.middleware, entries)
}

// PublishRoute publishes a route to be registered under the API prefix.
func (b *Bus) PublishRoute(route RouteAddition) {
	publish(b, &b.routes, route)
}

// SubscribeMiddleware registers fn as the middleware topic's subscriber.
func (b *Bus) SubscribeMiddleware(fn func([]middleware.Entry) error) (*Subscription, error) {
	return subscribe(b, &b.middleware, fn)
}

// SubscribeRoutes registers fn as the route topic's subscriber.
func (b *Bus) SubscribeRoutes(fn func(RouteAddition) error) (*Subscription, error) {
	return subscribe(b, &b.routes, fn)
}

// Subscribed reports whether the named topic has a subscriber.
func (b *Bus) Subscribed(topicName string) bool {
	switch topicName {
	case TopicMiddleware:
		return b.middleware.active()
	case TopicRoutes:
		return b.routes.active()
	default:
		return false
	}
}

// Subscription is a topic's registration. Cancel releases the topic.
type Subscription struct {
	topic  string
	once   sync.Once
	cancel func()
}

// Topic returns the subscribed topic name.
func (s *Subscription) Topic() string {
	return s.topic
}

// Cancel removes the subscriber. It is safe to call more than once.
func (s *Subscription) Cancel() {
	s.once.Do(s.cancel)
}

type topic[T any] struct {
	name string

	mu  sync.RWMutex
	fn  func(T) error
	gen uint64
}

func (t *topic[T]) active() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fn != nil
}

func subscribe[T any](b *Bus, t *topic[T], fn func(T) error) (*Subscription, error) {
	if fn == nil {
		return nil, fmt.Errorf("subscribe %s: nil handler", t.name)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fn != nil {
		return nil, fmt.Errorf("subscribe %s: %w", t.name, ErrAlreadySubscribed)
	}
	t.fn = fn
	t.gen++
	gen := t.gen

	b.logger.Debug("subscribed", "topic", t.name)

	return &Subscription{
		topic: t.name,
		cancel: func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			// A later subscriber must not be removed by a stale subscription.
			if t.gen == gen {
				t.fn = nil
				b.logger.Debug("unsubscribed", "topic", t.name)
			}
		},
	}, nil
}

// publish delivers payload synchronously. The subscriber is called outside
// the topic lock so it may publish or subscribe itself.
func publish[T any](b *Bus, t *topic[T], payload T) {
	t.mu.RLock()
	fn := t.fn
	t.mu.RUnlock()

	outcome := OutcomeDelivered
	switch {
	case fn == nil:
		outcome = OutcomeDropped
		b.logger.Debug("event dropped: no subscriber", "topic", t.name)
	default:
		if err := fn(payload); err != nil {
			outcome = OutcomeRejected
			b.logger.Warn("event rejected by subscriber", "topic", t.name, "error", err)
		}
	}

	if b.observer != nil {
		b.observer.ObserveEvent(t.name, outcome)
	}
}
