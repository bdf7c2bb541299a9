// Package stream provides typed in-process broadcast streams.
package stream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"rfid-console/internal/infra/metrics"
)

// Handler receives published values.
type Handler[T any] func(ctx context.Context, v T)

type subscription[T any] struct {
	id      uint64
	handler Handler[T]
}

// Stream is a hot broadcast: subscribers only see values published after
// they subscribed, nothing is replayed or buffered.
type Stream[T any] struct {
	name    string
	mu      sync.RWMutex
	subs    []subscription[T]
	nextID  atomic.Uint64
	closed  atomic.Bool
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a named stream. m may be nil.
func New[T any](name string, logger *slog.Logger, m *metrics.Metrics) *Stream[T] {
	return &Stream[T]{name: name, logger: logger, metrics: m}
}

// Name returns the stream name.
func (s *Stream[T]) Name() string { return s.name }

// Publish delivers v to every current subscriber, in subscription order, on
// the caller's goroutine. A panicking handler is recovered and logged.
func (s *Stream[T]) Publish(ctx context.Context, v T) {
	if s.closed.Load() {
		return
	}

	s.mu.RLock()
	subs := make([]subscription[T], len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()

	s.metrics.EventPublished(s.name)
	for _, sub := range subs {
		s.dispatch(ctx, v, sub)
	}
}

func (s *Stream[T]) dispatch(ctx context.Context, v T, sub subscription[T]) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("stream handler panicked",
				"stream", s.name,
				"panic", r,
			)
		}
	}()
	sub.handler(ctx, v)
}

// Subscribe registers h. Returns an unsubscribe function.
func (s *Stream[T]) Subscribe(h Handler[T]) func() {
	id := s.nextID.Add(1)

	s.mu.Lock()
	s.subs = append(s.subs, subscription[T]{id: id, handler: h})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscribeContext registers h until ctx ends.
func (s *Stream[T]) SubscribeContext(ctx context.Context, h Handler[T]) {
	unsub := s.Subscribe(h)
	context.AfterFunc(ctx, unsub)
}

// Len reports the number of subscribers.
func (s *Stream[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// Close drops every later publish. Idempotent.
func (s *Stream[T]) Close() {
	s.closed.Store(true)
}
