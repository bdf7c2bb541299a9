package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"rfid-console/internal/adapter/push"
	"rfid-console/internal/domain"
	"rfid-console/internal/infra/config"
	"rfid-console/internal/infra/logger"
)

// runWatch connects to the push channel and prints every decoded event until
// interrupted. Nothing is fetched from the REST API.
func runWatch() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	out, outCloser, err := logger.New(config.LoggerConfig{Level: "info", Format: cfg.Logger.Format, Output: "stdout"})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer outCloser()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	watchStreams(ctx, a, out)
	a.push.OnStateChange(func(s push.State) {
		out.Info("push connection", "state", s.String())
	})
	a.push.Connect(ctx)

	<-ctx.Done()
	return nil
}

func watchStreams(ctx context.Context, a *app, out *slog.Logger) {
	a.rfid.SubscribeContext(ctx, func(_ context.Context, m domain.RfidMessage) {
		out.Info("rfid", "type", string(m.Type), "tag", m.RfidTag, "location", string(m.Location))
	})
	a.alerts.SubscribeContext(ctx, func(_ context.Context, al domain.Alert) {
		attrs := []any{"id", al.ID, "type", al.AlertType, "shelf", al.ShelfName, "status", al.Status}
		if al.ProductName != nil {
			attrs = append(attrs, "product", *al.ProductName)
		}
		out.Warn("alert", attrs...)
	})
}
