// Package demux routes push frames to the typed event streams.
package demux

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"rfid-console/internal/adapter/push"
	"rfid-console/internal/domain"
	"rfid-console/internal/infra/metrics"
	"rfid-console/internal/usecase/stream"
)

// Drop reasons recorded on rfidconsole_frames_dropped_total.
const (
	ReasonEmpty   = "empty"
	ReasonDecode  = "decode"
	ReasonInvalid = "invalid"
	ReasonTopic   = "unknown_topic"
)

// Demux decodes frames from the rfid and alerts topics and publishes them.
type Demux struct {
	rfidTopic   string
	alertsTopic string
	rfid        *stream.Stream[domain.RfidMessage]
	alerts      *stream.Stream[domain.Alert]
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

// New creates a Demux publishing into rfid and alerts. m may be nil.
func New(rfidTopic, alertsTopic string, rfid *stream.Stream[domain.RfidMessage], alerts *stream.Stream[domain.Alert], logger *slog.Logger, m *metrics.Metrics) *Demux {
	return &Demux{
		rfidTopic:   rfidTopic,
		alertsTopic: alertsTopic,
		rfid:        rfid,
		alerts:      alerts,
		logger:      logger,
		metrics:     m,
	}
}

// Attach subscribes both topics on s. It is registered with
// push.Client.OnConnect so every new session is resubscribed. A failed
// subscription closes the session and lets the client reconnect.
func (d *Demux) Attach(ctx context.Context, s push.Session) {
	for _, topic := range []string{d.rfidTopic, d.alertsTopic} {
		frames, err := s.Subscribe(topic)
		if err != nil {
			d.logger.Warn("topic subscribe failed", "topic", topic, "error", err)
			_ = s.Close()
			return
		}
		go d.consume(ctx, frames)
	}
	d.logger.Info("subscribed", "rfid_topic", d.rfidTopic, "alerts_topic", d.alertsTopic)
}

// consume handles frames in arrival order until the channel closes.
func (d *Demux) consume(ctx context.Context, frames <-chan push.Frame) {
	for f := range frames {
		d.HandleFrame(ctx, f)
	}
}

// HandleFrame decodes one frame and publishes it to the matching stream.
// Malformed frames are dropped and counted, never propagated.
func (d *Demux) HandleFrame(ctx context.Context, f push.Frame) {
	d.metrics.FrameReceived(f.Topic)

	switch f.Topic {
	case d.rfidTopic:
		msg, err := DecodeRfid(f.Body)
		if err != nil {
			d.drop(f, err)
			return
		}
		d.rfid.Publish(ctx, msg)
	case d.alertsTopic:
		alert, err := DecodeAlert(f.Body)
		if err != nil {
			d.drop(f, err)
			return
		}
		d.alerts.Publish(ctx, alert)
	default:
		d.metrics.FrameDropped(f.Topic, ReasonTopic)
		d.logger.Debug("frame dropped", "topic", f.Topic, "reason", ReasonTopic)
	}
}

func (d *Demux) drop(f push.Frame, err error) {
	reason := dropReason(err)
	d.metrics.FrameDropped(f.Topic, reason)
	d.logger.Debug("frame dropped", "topic", f.Topic, "reason", reason, "error", err)
}

func dropReason(err error) string {
	switch {
	case errors.Is(err, errEmptyBody):
		return ReasonEmpty
	case errors.Is(err, domain.ErrDecode):
		return ReasonDecode
	default:
		return ReasonInvalid
	}
}

var errEmptyBody = domain.NewDomainError("demux", domain.ErrInvalidPayload, "empty body")

// DecodeRfid parses an rfid frame body. Fields are trimmed; type and tag are
// required.
func DecodeRfid(body []byte) (domain.RfidMessage, error) {
	var msg domain.RfidMessage
	if err := decode(body, &msg); err != nil {
		return domain.RfidMessage{}, err
	}
	msg.Type = domain.RfidEventType(strings.TrimSpace(string(msg.Type)))
	msg.RfidTag = strings.TrimSpace(msg.RfidTag)
	msg.Location = domain.Location(strings.TrimSpace(string(msg.Location)))
	if !msg.Valid() {
		return domain.RfidMessage{}, domain.NewDomainError("DecodeRfid", domain.ErrInvalidPayload, "type and rfidTag are required")
	}
	return msg, nil
}

// DecodeAlert parses an alerts frame body. The id is required.
func DecodeAlert(body []byte) (domain.Alert, error) {
	var alert domain.Alert
	if err := decode(body, &alert); err != nil {
		return domain.Alert{}, err
	}
	if !alert.Valid() {
		return domain.Alert{}, domain.NewDomainError("DecodeAlert", domain.ErrInvalidPayload, "id is required")
	}
	return alert, nil
}

func decode(body []byte, v any) error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(body, v); err != nil {
		return domain.NewDomainError("demux", domain.ErrDecode, err.Error())
	}
	return nil
}
