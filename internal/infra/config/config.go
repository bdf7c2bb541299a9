package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Push      PushConfig      `yaml:"push"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logger    LoggerConfig    `yaml:"logger"`
	Tracer    TracerConfig    `yaml:"tracer"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// BackendConfig holds the inventory REST API settings.
type BackendConfig struct {
	BaseURL        string               `yaml:"base_url"`
	Timeout        time.Duration        `yaml:"timeout"`
	AuthToken      string               `yaml:"auth_token"` // may be "enc:..."
	MaxBodyBytes   int64                `yaml:"max_body_bytes"`
	RateLimit      float64              `yaml:"rate_limit"` // requests per second, 0 = unlimited
	RateBurst      int                  `yaml:"rate_burst"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
	Pool           PoolConfig           `yaml:"pool"`
}

// CircuitBreakerConfig holds circuit breaker settings for backend calls.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxFailures uint32        `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
	Interval    time.Duration `yaml:"interval"`
}

// PoolConfig holds HTTP connection pool settings.
type PoolConfig struct {
	MaxIdleConns        int           `yaml:"max_idle_conns"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `yaml:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout"`
}

// PushConfig holds the STOMP-over-WebSocket channel settings.
type PushConfig struct {
	URL              string        `yaml:"url"`
	Host             string        `yaml:"host"` // STOMP virtual host, defaults to the URL host
	ReconnectDelay   time.Duration `yaml:"reconnect_delay"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	HeartbeatSend    time.Duration `yaml:"heartbeat_send"`
	HeartbeatReceive time.Duration `yaml:"heartbeat_receive"`
	RfidTopic        string        `yaml:"rfid_topic"`
	AlertsTopic      string        `yaml:"alerts_topic"`
	MaxFrameBytes    int64         `yaml:"max_frame_bytes"`
}

// DashboardConfig holds list sizes and notification timings.
type DashboardConfig struct {
	RecentEventsLimit   int           `yaml:"recent_events_limit"`
	LocationEventsLimit int           `yaml:"location_events_limit"`
	FormCloseDelay      time.Duration `yaml:"form_close_delay"`
	MessageClearDelay   time.Duration `yaml:"message_clear_delay"`
	ToastDuration       time.Duration `yaml:"toast_duration"`
	SaleMessageDelay    time.Duration `yaml:"sale_message_delay"`
	CartMessageDelay    time.Duration `yaml:"cart_message_delay"`
	CartErrorDelay      time.Duration `yaml:"cart_error_delay"`
}

// SchedulerConfig holds periodic task settings.
type SchedulerConfig struct {
	Enabled bool                  `yaml:"enabled"`
	Tasks   []ScheduledTaskConfig `yaml:"tasks"`
}

// ScheduledTaskConfig defines a single scheduled task.
type ScheduledTaskConfig struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"` // cron expression or duration string
	Action   string `yaml:"action"`
	OneShot  bool   `yaml:"one_shot,omitempty"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// MetricsConfig holds Prometheus settings. An empty Addr keeps the registry
// in-process without serving it.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

// Defaults returns a Config with sane defaults.
func Defaults() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:      "http://localhost:8080",
			Timeout:      15 * time.Second,
			MaxBodyBytes: 4 << 20,
			RateBurst:    10,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:     true,
				MaxFailures: 5,
				Timeout:     30 * time.Second,
				Interval:    60 * time.Second,
			},
			Pool: PoolConfig{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		Push: PushConfig{
			URL:              "ws://localhost:8080/ws/websocket",
			ReconnectDelay:   5 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			HeartbeatSend:    10 * time.Second,
			HeartbeatReceive: 10 * time.Second,
			RfidTopic:        "/topic/rfid",
			AlertsTopic:      "/topic/alerts",
			MaxFrameBytes:    1 << 20,
		},
		Dashboard: DashboardConfig{
			RecentEventsLimit:   15,
			LocationEventsLimit: 30,
			FormCloseDelay:      1500 * time.Millisecond,
			MessageClearDelay:   3 * time.Second,
			ToastDuration:       10 * time.Second,
			SaleMessageDelay:    5 * time.Second,
			CartMessageDelay:    2 * time.Second,
			CartErrorDelay:      3 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled: false,
			Tasks: []ScheduledTaskConfig{
				{Name: "refresh-dashboard", Schedule: "1m", Action: "refresh"},
			},
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load reads a YAML config file, applies env var overrides, and decrypts secrets.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyEnvOverrides(cfg)

	passphrase := os.Getenv("RFIDCONSOLE_CONFIG_KEY")
	if passphrase != "" {
		if err := decryptSecrets(cfg, passphrase); err != nil {
			return nil, fmt.Errorf("decrypt secrets: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps RFIDCONSOLE_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RFIDCONSOLE_BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = strings.TrimRight(v, "/")
	}
	if v := os.Getenv("RFIDCONSOLE_BACKEND_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Backend.Timeout = d
		}
	}
	if v := os.Getenv("RFIDCONSOLE_BACKEND_TOKEN"); v != "" {
		cfg.Backend.AuthToken = v
	}
	if v := os.Getenv("RFIDCONSOLE_BACKEND_RATE_LIMIT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backend.RateLimit = f
		}
	}
	if v := os.Getenv("RFIDCONSOLE_PUSH_URL"); v != "" {
		cfg.Push.URL = v
	}
	if v := os.Getenv("RFIDCONSOLE_PUSH_RECONNECT_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Push.ReconnectDelay = d
		}
	}
	if v := os.Getenv("RFIDCONSOLE_DASHBOARD_RECENT_EVENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Dashboard.RecentEventsLimit = n
		}
	}
	if v := os.Getenv("RFIDCONSOLE_SCHEDULER_ENABLED"); v != "" {
		cfg.Scheduler.Enabled = v == "true"
	}
	if v := os.Getenv("RFIDCONSOLE_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("RFIDCONSOLE_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("RFIDCONSOLE_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("RFIDCONSOLE_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("RFIDCONSOLE_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

// decryptSecrets finds "enc:..." values and decrypts them in place.
func decryptSecrets(cfg *Config, passphrase string) error {
	if strings.HasPrefix(cfg.Backend.AuthToken, "enc:") {
		decrypted, err := DecryptValue(strings.TrimPrefix(cfg.Backend.AuthToken, "enc:"), passphrase)
		if err != nil {
			return fmt.Errorf("backend auth_token: %w", err)
		}
		cfg.Backend.AuthToken = decrypted
	}
	return nil
}

// EncryptValue encrypts a plaintext value with AES-256-GCM using a passphrase.
func EncryptValue(plaintext, passphrase string) (string, error) {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	// Format: hex(salt) + ":" + hex(nonce+ciphertext)
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(ciphertext), nil
}

// DecryptValue decrypts a value produced by EncryptValue.
func DecryptValue(encrypted, passphrase string) (string, error) {
	saltHex, dataHex, ok := strings.Cut(encrypted, ":")
	if !ok {
		return "", fmt.Errorf("invalid encrypted format")
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return "", fmt.Errorf("decode salt: %w", err)
	}
	data, err := hex.DecodeString(dataHex)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	gcm, err := newGCM(passphrase, salt)
	if err != nil {
		return "", err
	}

	if len(data) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}
	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

// deriveKey uses Argon2id to derive a 32-byte key from passphrase + salt.
func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, 1, 64*1024, 4, 32)
}

// validatePermissions rejects config files writable by group or others.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	if mode&0o022 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
