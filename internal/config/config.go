// Package config loads application settings from defaults, an optional YAML
// file and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"diamond-pattern/internal/models"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Pattern    models.Params    `yaml:"pattern"`
	Viewport   ViewportConfig   `yaml:"viewport"`
	Processing ProcessingConfig `yaml:"processing"`
	Log        LogConfig        `yaml:"log"`
}

type ViewportConfig struct {
	MinScale       float64       `yaml:"min_scale"`
	MaxScale       float64       `yaml:"max_scale"`
	ZoomStep       float64       `yaml:"zoom_step"`
	FrameInterval  time.Duration `yaml:"frame_interval"`
	ResizeDebounce time.Duration `yaml:"resize_debounce"`
	GridColor      string        `yaml:"grid_color"`
}

type ProcessingConfig struct {
	Workers       int           `yaml:"workers"`
	Timeout       time.Duration `yaml:"timeout"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	MaxFetchBytes int64         `yaml:"max_fetch_bytes"`
	Seed          int64         `yaml:"seed"`
	// DiscardStale drops compute responses overtaken by a newer request.
	DiscardStale bool `yaml:"discard_stale"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

func Default() Config {
	return Config{
		Pattern: models.DefaultParams(),
		Viewport: ViewportConfig{
			MinScale:       0.1,
			MaxScale:       10,
			ZoomStep:       0.1,
			FrameInterval:  16 * time.Millisecond,
			ResizeDebounce: 300 * time.Millisecond,
			GridColor:      "#C6B696",
		},
		Processing: ProcessingConfig{
			Workers:       max(1, runtime.NumCPU()/2),
			Timeout:       60 * time.Second,
			FetchTimeout:  30 * time.Second,
			MaxFetchBytes: 64 << 20,
			Seed:          1,
			DiscardStale:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (when path is
// non-empty) and then with environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	var errs []error

	intVar := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}

	intVar("DIAMOND_SIZE", &c.Pattern.TargetSize)
	intVar("DIAMOND_COLORS", &c.Pattern.ColorCount)
	intVar("DIAMOND_WORKERS", &c.Processing.Workers)

	if v, ok := os.LookupEnv("DIAMOND_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DIAMOND_TIMEOUT: %w", err))
		} else {
			c.Processing.Timeout = d
		}
	}

	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.Log.Level = v
	} else if os.Getenv("DEBUG") == "1" {
		c.Log.Level = "debug"
	}

	if v, ok := os.LookupEnv("DIAMOND_LOG_JSON"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("DIAMOND_LOG_JSON: %w", err))
		} else {
			c.Log.JSON = b
		}
	}

	return errors.Join(errs...)
}

func (c Config) Validate() error {
	if err := c.Pattern.Validate(); err != nil {
		return err
	}

	v := c.Viewport
	if v.MinScale <= 0 || v.MaxScale < v.MinScale {
		return fmt.Errorf("invalid scale bounds [%g, %g]", v.MinScale, v.MaxScale)
	}
	if v.ZoomStep <= 0 {
		return fmt.Errorf("zoom step must be positive, got %g", v.ZoomStep)
	}
	if v.FrameInterval <= 0 {
		return fmt.Errorf("frame interval must be positive, got %s", v.FrameInterval)
	}

	if c.Processing.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Processing.Workers)
	}
	if c.Processing.Timeout <= 0 {
		return fmt.Errorf("processing timeout must be positive, got %s", c.Processing.Timeout)
	}

	return nil
}
