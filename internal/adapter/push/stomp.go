package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/go-stomp/stomp/v3"
	"nhooyr.io/websocket"

	"rfid-console/internal/infra/config"
)

var errSessionClosed = errors.New("push: session closed")

// stompSubprotocols are offered during the WebSocket upgrade.
var stompSubprotocols = []string{"v12.stomp", "v11.stomp", "v10.stomp"}

// StompDialer speaks STOMP over a WebSocket connection.
type StompDialer struct {
	cfg    config.PushConfig
	logger *slog.Logger
}

// NewStompDialer creates a dialer for cfg.URL.
func NewStompDialer(cfg config.PushConfig, logger *slog.Logger) *StompDialer {
	return &StompDialer{cfg: cfg, logger: logger}
}

// Dial upgrades to WebSocket and performs the STOMP handshake.
func (d *StompDialer) Dial(ctx context.Context) (Session, error) {
	dialCtx := ctx
	if d.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, d.cfg.HandshakeTimeout)
		defer cancel()
	}

	ws, _, err := websocket.Dial(dialCtx, d.cfg.URL, &websocket.DialOptions{
		Subprotocols: stompSubprotocols,
	})
	if err != nil {
		return nil, fmt.Errorf("push websocket dial: %w", err)
	}
	if d.cfg.MaxFrameBytes > 0 {
		ws.SetReadLimit(d.cfg.MaxFrameBytes)
	}

	// The net.Conn lives until the session's context ends.
	connCtx, cancel := context.WithCancel(ctx)
	nc := websocket.NetConn(connCtx, ws, websocket.MessageText)
	if d.cfg.HandshakeTimeout > 0 {
		_ = nc.SetDeadline(time.Now().Add(d.cfg.HandshakeTimeout))
	}

	conn, err := stomp.Connect(nc,
		stomp.ConnOpt.Host(d.host()),
		stomp.ConnOpt.HeartBeat(d.cfg.HeartbeatSend, d.cfg.HeartbeatReceive),
	)
	if err != nil {
		cancel()
		ws.Close(websocket.StatusProtocolError, "stomp handshake failed")
		return nil, fmt.Errorf("push stomp handshake: %w", err)
	}
	_ = nc.SetDeadline(time.Time{})

	d.logger.Debug("stomp session established", "url", d.cfg.URL, "version", string(conn.Version()))
	return &stompSession{
		conn:   conn,
		cancel: cancel,
		done:   make(chan struct{}),
	}, nil
}

func (d *StompDialer) host() string {
	if d.cfg.Host != "" {
		return d.cfg.Host
	}
	if u, err := url.Parse(d.cfg.URL); err == nil && u.Hostname() != "" {
		return u.Hostname()
	}
	return "/"
}

type stompSession struct {
	conn   *stomp.Conn
	cancel context.CancelFunc

	done      chan struct{}
	endOnce   sync.Once
	closeOnce sync.Once
	mu        sync.Mutex
	err       error
}

func (s *stompSession) Subscribe(topic string) (<-chan Frame, error) {
	sub, err := s.conn.Subscribe(topic, stomp.AckAuto)
	if err != nil {
		s.end(err)
		return nil, fmt.Errorf("subscribe %s: %w", topic, err)
	}
	out := make(chan Frame)
	go s.pump(topic, sub, out)
	return out, nil
}

// pump forwards messages until the subscription or the session ends.
// A server ERROR frame arrives as a message carrying Err and ends the session.
func (s *stompSession) pump(topic string, sub *stomp.Subscription, out chan<- Frame) {
	defer close(out)
	for {
		select {
		case msg, ok := <-sub.C:
			if !ok {
				s.end(errSessionClosed)
				return
			}
			if msg.Err != nil {
				s.end(msg.Err)
				return
			}
			select {
			case out <- Frame{Topic: topic, Body: msg.Body}:
			case <-s.done:
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *stompSession) Done() <-chan struct{} { return s.done }

func (s *stompSession) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *stompSession) end(err error) {
	s.endOnce.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.done)
	})
}

// Close disconnects gracefully when the session is healthy and tears the
// socket down either way.
func (s *stompSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		healthy := s.Err() == nil
		s.end(nil)
		if healthy {
			err = s.conn.Disconnect()
		} else {
			err = s.conn.MustDisconnect()
		}
		s.cancel()
	})
	return err
}
