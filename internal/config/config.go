// Package config loads runtime settings from, in increasing priority, the
// built-in defaults, an optional YAML file, a .env file and the process
// environment. Command-line flags are applied on top by the caller before
// Validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/luki/hwtelemetry/internal/detect"
	"github.com/luki/hwtelemetry/internal/extract"
)

const (
	UnitCelsius    = "celsius"
	UnitFahrenheit = "fahrenheit"
)

// Config holds every runtime setting.
type Config struct {
	// LibreHardwareMonitor web server.
	Host         string        `yaml:"host" validate:"required"`
	Port         int           `yaml:"port" validate:"min=1,max=65535"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"gt=0"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" validate:"gt=0"`

	TemperatureUnit string `yaml:"temperature_unit" validate:"oneof=celsius fahrenheit"`
	ListenAddr      string `yaml:"listen_addr" validate:"required"`
	DataDir         string `yaml:"data_dir" validate:"required"`
	Record          bool   `yaml:"record"`
	HistorySize     int    `yaml:"history_size" validate:"min=1"`

	LogLevel  string `yaml:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`

	Tuning Tuning `yaml:"tuning"`
}

// Tuning exposes the classification heuristics.
type Tuning struct {
	Detect detect.Tuning  `yaml:",inline"`
	Limits extract.Limits `yaml:",inline"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:            "localhost",
		Port:            8085,
		PollInterval:    5 * time.Second,
		FetchTimeout:    10 * time.Second,
		TemperatureUnit: UnitCelsius,
		ListenAddr:      ":8090",
		DataDir:         "~/.hwtelemetry",
		Record:          true,
		HistorySize:     600,
		LogLevel:        "info",
		LogFormat:       "text",
		Tuning: Tuning{
			Detect: detect.DefaultTuning(),
			Limits: extract.DefaultLimits(),
		},
	}
}

// Load builds the configuration. path names an optional YAML file; when
// empty HWT_CONFIG is consulted. A missing .env file is not an error.
func Load(path string) (Config, error) {
	godotenv.Load()

	cfg := Default()
	if path == "" {
		path = os.Getenv("HWT_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	cfg.DataDir = expandHome(cfg.DataDir)
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() {
	c.Host = env("HWT_HOST", c.Host)
	c.Port = envInt("HWT_PORT", c.Port)
	c.PollInterval = envDuration("HWT_POLL_INTERVAL", c.PollInterval)
	c.FetchTimeout = envDuration("HWT_FETCH_TIMEOUT", c.FetchTimeout)
	c.TemperatureUnit = strings.ToLower(env("HWT_TEMPERATURE_UNIT", c.TemperatureUnit))
	c.ListenAddr = env("HWT_LISTEN_ADDR", c.ListenAddr)
	c.DataDir = env("HWT_DATA_DIR", c.DataDir)
	c.Record = envBool("HWT_RECORD", c.Record)
	c.HistorySize = envInt("HWT_HISTORY_SIZE", c.HistorySize)
	c.LogLevel = strings.ToLower(env("HWT_LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(env("HWT_LOG_FORMAT", c.LogFormat))
}

var validate = validator.New()

// Validate checks field constraints and the tuning bounds.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %v fails %q", strings.ToLower(fe.Field()), fe.Value(), fe.Tag())
		}
		return err
	}

	lim := c.Tuning.Limits
	if lim.BoardMin >= lim.BoardMax {
		return fmt.Errorf("invalid tuning: board range (%g, %g) is empty", lim.BoardMin, lim.BoardMax)
	}
	if lim.ClockFloor < 0 {
		return errors.New("invalid tuning: clock floor must be >= 0")
	}
	w := c.Tuning.Detect.Activity
	if w.Upload < 0 || w.Download < 0 || w.Utilization < 0 {
		return errors.New("invalid tuning: activity weights must be >= 0")
	}
	return nil
}

// DatabasePath returns the SQLite file inside DataDir.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "readings.db")
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch v {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
