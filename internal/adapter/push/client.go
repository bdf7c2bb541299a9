// Package push keeps the console's single push-messaging connection to the
// backend alive and hands each new session to the registered handlers.
package push

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rfid-console/internal/infra/metrics"
)

// State is the connection state reported to observers.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Frame is one message received on a subscribed topic.
type Frame struct {
	Topic string
	Body  []byte
}

// Session is one established connection. Frames channels close when the
// session ends; Done is closed at the same time and Err reports why.
type Session interface {
	Subscribe(topic string) (<-chan Frame, error)
	Done() <-chan struct{}
	Err() error
	Close() error
}

// Dialer opens sessions.
type Dialer interface {
	Dial(ctx context.Context) (Session, error)
}

// ConnectHandler runs after every successful handshake. ctx ends with the session.
type ConnectHandler func(ctx context.Context, s Session)

const defaultReconnectDelay = 5 * time.Second

// Client owns at most one live session and reconnects after a fixed delay.
type Client struct {
	dialer  Dialer
	delay   time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu        sync.Mutex
	state     State
	running   bool
	closed    bool
	cancel    context.CancelFunc
	session   Session
	onConnect []ConnectHandler
	onState   []func(State)
	wg        sync.WaitGroup
}

// ClientOption customises a Client.
type ClientOption func(*Client)

// WithReconnectDelay sets the fixed wait between attempts.
func WithReconnectDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithMetrics records connection state and reconnects.
func WithMetrics(m *metrics.Metrics) ClientOption {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a disconnected Client.
func NewClient(dialer Dialer, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		dialer: dialer,
		delay:  defaultReconnectDelay,
		logger: logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// OnConnect registers h for every future handshake.
func (c *Client) OnConnect(h ConnectHandler) {
	c.mu.Lock()
	c.onConnect = append(c.onConnect, h)
	c.mu.Unlock()
}

// OnStateChange registers fn for state transitions. fn must not block.
func (c *Client) OnStateChange(fn func(State)) {
	c.mu.Lock()
	c.onState = append(c.onState, fn)
	c.mu.Unlock()
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Connect starts the connection loop unless it is already running or the
// client was closed. Failures are reported through state changes and logs.
func (c *Client) Connect(ctx context.Context) {
	c.mu.Lock()
	if c.closed || c.running {
		c.mu.Unlock()
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.running = true
	c.cancel = cancel
	c.wg.Add(1)
	c.mu.Unlock()

	go c.run(loopCtx)
}

// Close stops the loop and the live session. The client cannot be reconnected.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	c.logger.Info("push client closed")
	return nil
}

func (c *Client) run(ctx context.Context) {
	defer c.wg.Done()
	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		c.setState(StateDisconnected)
	}()

	for {
		c.setState(StateConnecting)
		sess, err := c.dialer.Dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("push connect failed", "error", err, "retry_in", c.delay)
		} else if !c.serve(ctx, sess) {
			return
		}

		c.setState(StateDisconnected)
		c.metrics.PushReconnect()
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return
		}
	}
}

// serve runs one session to its end. It reports false when the loop must stop.
func (c *Client) serve(ctx context.Context, sess Session) bool {
	c.mu.Lock()
	c.session = sess
	handlers := append([]ConnectHandler(nil), c.onConnect...)
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		_ = sess.Close()
	}()

	c.setState(StateConnected)
	c.logger.Info("push connected")

	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	for _, h := range handlers {
		h(sessCtx, sess)
	}

	select {
	case <-sess.Done():
		if ctx.Err() != nil {
			return false
		}
		c.logger.Warn("push session ended", "error", sess.Err(), "retry_in", c.delay)
		return true
	case <-ctx.Done():
		return false
	}
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	if c.state == s {
		c.mu.Unlock()
		return
	}
	c.state = s
	observers := append(([]func(State))(nil), c.onState...)
	c.mu.Unlock()

	c.metrics.PushState(int(s))
	for _, fn := range observers {
		fn(s)
	}
}
