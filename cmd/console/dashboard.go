package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"rfid-console/internal/adapter/push"
	"rfid-console/internal/adapter/tui/console"
	"rfid-console/internal/infra/config"
	"rfid-console/internal/infra/logger"
	"rfid-console/internal/usecase/dashboard"
	"rfid-console/internal/usecase/scheduling"
)

// defaultLogFile receives the dashboard's logs when the config sends them to
// the terminal.
var defaultLogFile = filepath.Join(os.TempDir(), "rfid-console.log")

func runDashboard() error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser, err := logger.ForTerminalUI(cfg.Logger, defaultLogFile)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.close()

	changes := console.NewNotifier()

	reducer := dashboard.New(a.api, cfg.Dashboard, logger.Component(log, "dashboard"),
		dashboard.WithMetrics(a.metrics))
	reducer.OnChange(func(dashboard.Cell) { changes.Notify() })
	reducer.Attach(ctx, a.rfid, a.alerts)
	reducer.Start(ctx)

	a.push.OnStateChange(func(push.State) { changes.Notify() })
	a.push.Connect(ctx)

	if cfg.Scheduler.Enabled {
		sched := scheduling.NewScheduler(logger.Component(log, "scheduler"))
		sched.RegisterAction(scheduling.ActionRefresh, func(context.Context) error {
			reducer.Refresh()
			return nil
		})
		sched.RegisterAction(scheduling.ActionReload, func(context.Context) error {
			reducer.Reload()
			return nil
		})
		if err := sched.AddTasks(scheduling.TasksFromConfig(cfg.Scheduler)); err != nil {
			return fmt.Errorf("scheduler: %w", err)
		}
		sched.Start(ctx)
		defer sched.Stop()
	}

	log.Info("dashboard starting", "backend", cfg.Backend.BaseURL, "push", cfg.Push.URL)

	model := console.New(ctx, reducer, console.Options{Changes: changes, ConnState: a.push.State})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	cancel()
	<-reducer.Done()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
