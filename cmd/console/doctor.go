package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"rfid-console/internal/adapter/backend"
	"rfid-console/internal/adapter/push"
	"rfid-console/internal/adapter/tui/uxerror"
	"rfid-console/internal/infra/config"
	"rfid-console/internal/infra/logger"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
	Err     error
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(ctx context.Context, cfg *config.Config) CheckResult
}

const checkTimeout = 10 * time.Second

// runDoctor executes all health checks and reports results.
func runDoctor() error {
	cfgPath := configPath()
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Backend token", Fn: checkAuthToken},
		{Name: "Backend API", Fn: checkBackend},
		{Name: "Push channel", Fn: checkPush},
		{Name: "Metrics listener", Fn: checkMetricsAddr},
	}

	fmt.Println("rfid-console doctor")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println()

	var pass, warn, fail int
	for _, check := range checks {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		result := check.Fn(ctx, cfg)
		cancel()
		result.Name = check.Name

		fmt.Printf("  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Printf("      Fix: %s\n", result.Fix)
		}
		if result.Err != nil && result.Status == StatusFail {
			for _, line := range strings.Split(uxerror.Humanize(result.Err).Render(), "\n") {
				fmt.Println("      " + line)
			}
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Println()
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile reports on the config file. A missing file is only a
// warning since defaults and env overrides still apply.
func checkConfigFile(cfgPath string, cfgErr error) func(context.Context, *config.Config) CheckResult {
	return func(context.Context, *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     "Check the YAML syntax and the values named above",
				Err:     cfgErr,
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("%s not found, using defaults and RFIDCONSOLE_* variables", cfgPath),
			}
		}
		return CheckResult{Status: StatusPass, Message: fmt.Sprintf("config loaded from %s", cfgPath)}
	}
}

func checkAuthToken(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	switch {
	case cfg.Backend.AuthToken == "":
		return CheckResult{Status: StatusPass, Message: "no bearer token configured"}
	case strings.HasPrefix(cfg.Backend.AuthToken, "enc:"):
		return CheckResult{
			Status:  StatusFail,
			Message: "token is still encrypted",
			Fix:     "Set RFIDCONSOLE_CONFIG_KEY to the passphrase used to encrypt it",
		}
	}
	return CheckResult{Status: StatusPass, Message: "bearer token configured"}
}

// checkBackend fetches the dashboard stats, the cheapest call touching the
// database.
func checkBackend(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	api := backend.New(cfg.Backend, logger.Discard())
	start := time.Now()
	stats, err := api.Stats(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("%s unreachable", cfg.Backend.BaseURL),
			Fix:     "Check backend.base_url or RFIDCONSOLE_BACKEND_URL",
			Err:     err,
		}
	}
	return CheckResult{
		Status: StatusPass,
		Message: fmt.Sprintf("%s answered in %s (%d products, %d shelves)",
			cfg.Backend.BaseURL, time.Since(start).Round(time.Millisecond), stats.TotalProducts, stats.TotalShelves),
	}
}

// checkPush performs one STOMP handshake and subscribes both topics.
func checkPush(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	sess, err := push.NewStompDialer(cfg.Push, logger.Discard()).Dial(ctx)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("handshake with %s failed", cfg.Push.URL),
			Fix:     "Check push.url or RFIDCONSOLE_PUSH_URL",
			Err:     err,
		}
	}
	defer sess.Close()

	for _, topic := range []string{cfg.Push.RfidTopic, cfg.Push.AlertsTopic} {
		if _, err := sess.Subscribe(topic); err != nil {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("connected but %s could not be subscribed", topic),
				Err:     err,
			}
		}
	}
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("subscribed to %s and %s", cfg.Push.RfidTopic, cfg.Push.AlertsTopic)}
}

func checkMetricsAddr(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check, config not loaded"}
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr == "" {
		return CheckResult{Status: StatusPass, Message: "not served"}
	}
	ln, err := net.Listen("tcp", cfg.Metrics.Addr)
	if err != nil {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s is not available: %v", cfg.Metrics.Addr, err),
			Fix:     "Pick a free port for metrics.addr",
		}
	}
	_ = ln.Close()
	return CheckResult{Status: StatusPass, Message: fmt.Sprintf("%s is free", cfg.Metrics.Addr)}
}
