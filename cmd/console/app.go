package main

import (
	"context"
	"fmt"
	"log/slog"

	"rfid-console/internal/adapter/backend"
	"rfid-console/internal/adapter/push"
	"rfid-console/internal/domain"
	"rfid-console/internal/infra/config"
	"rfid-console/internal/infra/logger"
	"rfid-console/internal/infra/metrics"
	"rfid-console/internal/infra/tracer"
	"rfid-console/internal/usecase/demux"
	"rfid-console/internal/usecase/stream"
)

// app holds the components shared by the dashboard and watch commands.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics

	api    *backend.Client
	rfid   *stream.Stream[domain.RfidMessage]
	alerts *stream.Stream[domain.Alert]
	push   *push.Client

	cleanups []func()
}

// newApp wires tracing, metrics, the REST client and the push pipeline. The
// push client is created disconnected.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return nil, fmt.Errorf("tracer: %w", err)
	}
	a.cleanups = append(a.cleanups, func() { _ = tracerShutdown(context.Background()) })

	if cfg.Metrics.Enabled {
		a.metrics = metrics.New()
		if cfg.Metrics.Addr != "" {
			srv := metrics.NewServer(a.metrics, cfg.Metrics.Path, logger.Component(log, "metrics"))
			if err := srv.Start(ctx, cfg.Metrics.Addr); err != nil {
				a.close()
				return nil, err
			}
		}
	}

	a.api = backend.New(cfg.Backend, logger.Component(log, "backend"), backend.WithMetrics(a.metrics))

	a.rfid = stream.New[domain.RfidMessage]("rfid", logger.Component(log, "stream"), a.metrics)
	a.alerts = stream.New[domain.Alert]("alerts", logger.Component(log, "stream"), a.metrics)
	a.cleanups = append(a.cleanups, a.rfid.Close, a.alerts.Close)

	d := demux.New(cfg.Push.RfidTopic, cfg.Push.AlertsTopic, a.rfid, a.alerts, logger.Component(log, "demux"), a.metrics)
	pushLog := logger.Component(log, "push")
	a.push = push.NewClient(push.NewStompDialer(cfg.Push, pushLog), pushLog,
		push.WithReconnectDelay(cfg.Push.ReconnectDelay),
		push.WithMetrics(a.metrics),
	)
	a.push.OnConnect(d.Attach)
	a.cleanups = append(a.cleanups, func() { _ = a.push.Close() })

	return a, nil
}

// close releases everything in reverse order of creation.
func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
	a.cleanups = nil
}
