// Package config loads outfitter settings in three layers: built-in
// defaults, an optional YAML file, then OUTFITTER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnv names the environment variable holding an explicit config file path.
const PathEnv = "OUTFITTER_CONFIG"

// envPrefix starts every environment override, e.g. OUTFITTER_CATALOG_BASE_URL.
const envPrefix = "OUTFITTER_"

// Config is the full application configuration.
type Config struct {
	DataDir string        `koanf:"data_dir" validate:"required"`
	Catalog CatalogConfig `koanf:"catalog"`
	Session SessionConfig `koanf:"session"`
	UI      UIConfig      `koanf:"ui"`
	Logging LoggingConfig `koanf:"logging"`
}

// CatalogConfig configures the catalog service client.
type CatalogConfig struct {
	BaseURL           string        `koanf:"base_url" validate:"required,http_url"`
	Timeout           time.Duration `koanf:"timeout" validate:"gte=0"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gte=0"`
	Burst             int           `koanf:"burst" validate:"gte=0"`
	Breaker           BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the circuit breaker. A zero FailureThreshold
// disables it.
type BreakerConfig struct {
	FailureThreshold uint32        `koanf:"failure_threshold"`
	OpenTimeout      time.Duration `koanf:"open_timeout" validate:"gte=0"`
	HalfOpenRequests uint32        `koanf:"half_open_requests"`
}

// SessionConfig configures the interaction state machine.
type SessionConfig struct {
	Ordering string `koanf:"ordering" validate:"oneof=latest last-response last_response"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	FallbackImage string `koanf:"fallback_image" validate:"required"`
	ProbeImages   bool   `koanf:"probe_images"`
}

// LoggingConfig configures the diagnostics log and the event log.
type LoggingConfig struct {
	Level    string `koanf:"level" validate:"oneof=debug info warn error"`
	EventLog string `koanf:"event_log"` // empty: <data_dir>/events.jsonl
	RingSize int    `koanf:"ring_size" validate:"gte=0"`
	Disabled bool   `koanf:"disabled"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir: filepath.Join(home, ".outfitter"),
		Catalog: CatalogConfig{
			BaseURL:           "http://127.0.0.1:5000",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 20,
			Burst:             4,
			Breaker: BreakerConfig{
				FailureThreshold: 5,
				OpenTimeout:      30 * time.Second,
				HalfOpenRequests: 1,
			},
		},
		Session: SessionConfig{Ordering: "latest"},
		UI: UIConfig{
			FallbackImage: "/fallback.jpg",
			ProbeImages:   true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			RingSize: 512,
		},
	}
}

// Path returns the config file Load reads: $OUTFITTER_CONFIG, else
// ~/.outfitter/config.yaml.
func Path() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".outfitter", "config.yaml")
}

// Load reads configuration from Path. A missing file is not an error
// unless it was named explicitly through OUTFITTER_CONFIG.
func Load() (*Config, error) {
	path := Path()
	explicit := os.Getenv(PathEnv) != ""
	if _, err := os.Stat(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		path = ""
	}
	return LoadFile(path)
}

// LoadFile layers defaults, the YAML file at path (skipped when empty), and
// the environment, then validates the result.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeys(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKeys maps OUTFITTER_SECTION_FIELD to section.field for every known
// key. Unknown variables map to "" and are skipped.
func envKeys(keys []string) func(string) string {
	known := make(map[string]string, len(keys))
	for _, key := range keys {
		known[envPrefix+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))] = key
	}
	return func(name string) string {
		return known[name]
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// EventLogPath returns where the JSONL event log is written.
func (c *Config) EventLogPath() string {
	if c.Logging.EventLog != "" {
		return c.Logging.EventLog
	}
	return filepath.Join(c.DataDir, "events.jsonl")
}
