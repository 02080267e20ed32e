// Package config loads process configuration from YAML with KANBAN_*
// environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"kanbancore/internal/infra/events/amqp"
	"kanbancore/internal/kv"
	"kanbancore/internal/logger"
)

// DefaultNamespace is the key the snapshot is stored under.
const DefaultNamespace = "kanban-enterprise"

// Change sink drivers.
const (
	EventsNone = "none"
	EventsLog  = "log"
	EventsAMQP = "amqp"
)

// Config is the full process configuration.
type Config struct {
	Namespace string        `yaml:"namespace"`
	Store     kv.Config     `yaml:"store"`
	Seed      SeedConfig    `yaml:"seed"`
	Log       logger.Config `yaml:"log"`
	Events    EventsConfig  `yaml:"events"`
	Metrics   MetricsConfig `yaml:"metrics"`
}

// SeedConfig points at an optional seed file replacing the embedded one.
type SeedConfig struct {
	Path string `yaml:"path"`
}

// EventsConfig selects where committed changes are published.
type EventsConfig struct {
	Driver string      `yaml:"driver"`
	AMQP   amqp.Config `yaml:"amqp"`
}

// MetricsConfig controls the Prometheus endpoint and the optional JSON span
// log. Empty values disable each.
type MetricsConfig struct {
	Addr      string `yaml:"addr"`
	TracePath string `yaml:"trace_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Namespace: DefaultNamespace,
		Store:     kv.Config{Driver: kv.DriverFilesystem, FSRoot: "./kvdata"},
		Log:       logger.Config{Level: "info"},
		Events:    EventsConfig{Driver: EventsNone, AMQP: amqp.Config{Exchange: amqp.DefaultExchange}},
	}
}

// Load reads path (optional) over the defaults, applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := decode(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	OverrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// OverrideFromEnv applies KANBAN_* variables on top of cfg.
func OverrideFromEnv(cfg *Config) {
	setString(&cfg.Namespace, "KANBAN_NAMESPACE")
	if v := os.Getenv("KANBAN_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = kv.Driver(v)
	}
	setString(&cfg.Store.FSRoot, "KANBAN_STORE_FS_ROOT")
	setString(&cfg.Store.SQLitePath, "KANBAN_STORE_SQLITE_PATH")
	setString(&cfg.Store.PostgresDSN, "KANBAN_STORE_POSTGRES_DSN")
	setString(&cfg.Store.Redis.Addr, "KANBAN_REDIS_ADDR")
	setString(&cfg.Store.Redis.Password, "KANBAN_REDIS_PASSWORD")
	if v := os.Getenv("KANBAN_REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Store.Redis.DB = db
		}
	}
	setString(&cfg.Store.S3.Bucket, "KANBAN_S3_BUCKET")
	setString(&cfg.Store.S3.Region, "KANBAN_S3_REGION")
	setString(&cfg.Store.S3.Endpoint, "KANBAN_S3_ENDPOINT")
	setString(&cfg.Store.S3.Prefix, "KANBAN_S3_PREFIX")
	if v := os.Getenv("KANBAN_S3_PATH_STYLE"); v != "" {
		cfg.Store.S3.PathStyle = strings.EqualFold(v, "true")
	}
	setString(&cfg.Seed.Path, "KANBAN_SEED_PATH")
	setString(&cfg.Log.Level, "KANBAN_LOG_LEVEL")
	if v := os.Getenv("KANBAN_LOG_DEVELOPMENT"); v != "" {
		cfg.Log.Development = strings.EqualFold(v, "true")
	}
	setString(&cfg.Events.Driver, "KANBAN_EVENTS_DRIVER")
	setString(&cfg.Events.AMQP.URL, "KANBAN_AMQP_URL")
	setString(&cfg.Events.AMQP.Exchange, "KANBAN_AMQP_EXCHANGE")
	setString(&cfg.Metrics.Addr, "KANBAN_METRICS_ADDR")
	setString(&cfg.Metrics.TracePath, "KANBAN_TRACE_PATH")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Namespace) == "" {
		errs = append(errs, errors.New("namespace must not be empty"))
	}
	if c.Store.Driver != "" && !slices.Contains(kv.Drivers(), c.Store.Driver) {
		errs = append(errs, fmt.Errorf("store.driver %q is not supported", c.Store.Driver))
	}
	if c.Store.Driver == kv.DriverS3 && c.Store.S3.Bucket == "" {
		errs = append(errs, errors.New("store.s3.bucket is required for the s3 driver"))
	}
	switch c.Events.Driver {
	case "", EventsNone, EventsLog:
	case EventsAMQP:
		if c.Events.AMQP.URL == "" {
			errs = append(errs, errors.New("events.amqp.url is required for the amqp driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("events.driver %q is not supported", c.Events.Driver))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
