package stream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfid-console/internal/infra/logger"
	"rfid-console/internal/infra/metrics"
)

func TestPublishDeliversInOrder(t *testing.T) {
	s := New[int]("numbers", logger.Discard(), nil)

	var got []string
	s.Subscribe(func(_ context.Context, v int) { got = append(got, "a") })
	s.Subscribe(func(_ context.Context, v int) { got = append(got, "b") })

	s.Publish(context.Background(), 1)
	s.Publish(context.Background(), 2)

	assert.Equal(t, []string{"a", "b", "a", "b"}, got)
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	s := New[string]("words", logger.Discard(), nil)
	s.Publish(context.Background(), "early")

	var got []string
	s.Subscribe(func(_ context.Context, v string) { got = append(got, v) })
	s.Publish(context.Background(), "late")

	assert.Equal(t, []string{"late"}, got)
}

func TestUnsubscribe(t *testing.T) {
	s := New[int]("numbers", logger.Discard(), nil)

	var a, b int
	unsubA := s.Subscribe(func(_ context.Context, v int) { a += v })
	s.Subscribe(func(_ context.Context, v int) { b += v })
	require.Equal(t, 2, s.Len())

	unsubA()
	unsubA()
	assert.Equal(t, 1, s.Len())

	s.Publish(context.Background(), 5)
	assert.Equal(t, 0, a)
	assert.Equal(t, 5, b)
}

func TestSubscribeContextEndsWithContext(t *testing.T) {
	s := New[int]("numbers", logger.Discard(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	s.SubscribeContext(ctx, func(context.Context, int) {})
	require.Equal(t, 1, s.Len())

	cancel()
	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestPanickingHandlerIsolated(t *testing.T) {
	s := New[int]("numbers", logger.Discard(), nil)

	var got int
	s.Subscribe(func(context.Context, int) { panic("boom") })
	s.Subscribe(func(_ context.Context, v int) { got = v })

	assert.NotPanics(t, func() { s.Publish(context.Background(), 9) })
	assert.Equal(t, 9, got)
}

func TestClosedStreamDropsPublishes(t *testing.T) {
	s := New[int]("numbers", logger.Discard(), nil)

	var calls int
	s.Subscribe(func(context.Context, int) { calls++ })
	s.Close()
	s.Close()
	s.Publish(context.Background(), 1)

	assert.Zero(t, calls)
}

func TestUnsubscribeFromHandler(t *testing.T) {
	s := New[int]("numbers", logger.Discard(), nil)

	var calls int
	var unsub func()
	unsub = s.Subscribe(func(context.Context, int) {
		calls++
		unsub()
	})

	s.Publish(context.Background(), 1)
	s.Publish(context.Background(), 2)
	assert.Equal(t, 1, calls)
}

func TestConcurrentPublishSubscribe(t *testing.T) {
	s := New[int]("numbers", logger.Discard(), nil)

	var mu sync.Mutex
	total := 0
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unsub := s.Subscribe(func(_ context.Context, v int) {
				mu.Lock()
				total += v
				mu.Unlock()
			})
			defer unsub()
		}()
		go func() {
			defer wg.Done()
			s.Publish(context.Background(), 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, s.Len())
}

func TestPublishCounted(t *testing.T) {
	m := metrics.New()
	s := New[int]("rfid", logger.Discard(), m)
	s.Publish(context.Background(), 1)
	s.Publish(context.Background(), 2)

	n, err := testutil.GatherAndCount(m.Registry(), "rfidconsole_events_published_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "rfid", s.Name())
}
