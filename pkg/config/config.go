package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oarkflow/bcl"
	"github.com/oarkflow/errors"
	"github.com/oarkflow/json"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/spp/interpreter"
)

// Config is the file-based configuration shared by the CLI commands.
type Config struct {
	Runtime   RuntimeSpec    `json:"runtime" yaml:"runtime"`
	Server    ServerSpec     `json:"server" yaml:"server"`
	History   HistorySpec    `json:"history" yaml:"history"`
	Cache     CacheSpec      `json:"cache" yaml:"cache"`
	Schedules []ScheduleSpec `json:"schedules" yaml:"schedules"`
}

// RuntimeSpec mirrors interpreter.RuntimeConfig with durations written as
// strings such as "500ms".
type RuntimeSpec struct {
	ExecTimeout  string `json:"exec_timeout" yaml:"exec_timeout"`
	MaxCallDepth int    `json:"max_call_depth" yaml:"max_call_depth"`
	LogExecution bool   `json:"log_execution" yaml:"log_execution"`
	ImportRoot   string `json:"import_root" yaml:"import_root"`
}

type ServerSpec struct {
	Addr    string `json:"addr" yaml:"addr"`
	Version string `json:"version" yaml:"version"`
}

type HistorySpec struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	File    string `json:"file" yaml:"file"`
}

type CacheSpec struct {
	MaxPrograms int64 `json:"max_programs" yaml:"max_programs"`
}

// ScheduleSpec runs Script on the Cron spec (standard five-field syntax or
// descriptors like "@every 1m").
type ScheduleSpec struct {
	ID     string   `json:"id" yaml:"id"`
	Cron   string   `json:"cron" yaml:"cron"`
	Script string   `json:"script" yaml:"script"`
	Args   []string `json:"args" yaml:"args"`
}

func Default() *Config {
	return &Config{
		Runtime: RuntimeSpec{
			MaxCallDepth: 2048,
			ImportRoot:   ".",
		},
		Server: ServerSpec{
			Addr:    ":8080",
			Version: "1.0.0",
		},
		History: HistorySpec{
			Enabled: true,
			File:    ".spp_history.json",
		},
		Cache: CacheSpec{
			MaxPrograms: 1024,
		},
	}
}

// Load reads a config file based on its extension. Values missing from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return loadConfig(path, yaml.Unmarshal)
	case ".json":
		return loadConfig(path, func(data []byte, v any) error {
			return json.Unmarshal(data, v)
		})
	case ".bcl":
		return loadConfig(path, func(data []byte, v any) error {
			_, err := bcl.Unmarshal(data, v)
			return err
		})
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// LoadFromString decodes raw text in the given format ("yaml", "json" or "bcl").
func LoadFromString(content, format string) (*Config, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return decodeConfig([]byte(content), yaml.Unmarshal)
	case "json":
		return decodeConfig([]byte(content), func(data []byte, v any) error {
			return json.Unmarshal(data, v)
		})
	case "bcl":
		return decodeConfig([]byte(content), func(data []byte, v any) error {
			_, err := bcl.Unmarshal(data, v)
			return err
		})
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Runtime.ExecTimeout != "" {
		d, err := time.ParseDuration(cfg.Runtime.ExecTimeout)
		if err != nil {
			return errors.New("runtime.exec_timeout is not a valid duration: " + cfg.Runtime.ExecTimeout)
		}
		if d < 0 {
			return errors.New("runtime.exec_timeout must not be negative")
		}
	}
	if cfg.Runtime.MaxCallDepth < 0 {
		return errors.New("runtime.max_call_depth must not be negative")
	}
	if cfg.Cache.MaxPrograms < 0 {
		return errors.New("cache.max_programs must not be negative")
	}
	if cfg.History.Enabled && cfg.History.File == "" {
		return errors.New("history.file is required when history is enabled")
	}
	seen := make(map[string]struct{}, len(cfg.Schedules))
	for idx, s := range cfg.Schedules {
		if s.ID == "" {
			return errors.New(fmt.Sprintf("schedule at index %d is missing an id", idx))
		}
		if _, ok := seen[s.ID]; ok {
			return errors.New(fmt.Sprintf("schedule %s is declared twice", s.ID))
		}
		seen[s.ID] = struct{}{}
		if s.Cron == "" {
			return errors.New(fmt.Sprintf("schedule %s is missing a cron spec", s.ID))
		}
		if s.Script == "" {
			return errors.New(fmt.Sprintf("schedule %s is missing a script", s.ID))
		}
	}
	return nil
}

// RuntimeConfig converts the runtime section. Call Validate first.
func (cfg *Config) RuntimeConfig() interpreter.RuntimeConfig {
	var timeout time.Duration
	if cfg.Runtime.ExecTimeout != "" {
		timeout, _ = time.ParseDuration(cfg.Runtime.ExecTimeout)
	}
	return interpreter.RuntimeConfig{
		ExecTimeout:  timeout,
		MaxCallDepth: cfg.Runtime.MaxCallDepth,
		LogExecution: cfg.Runtime.LogExecution,
	}
}

func loadConfig(path string, fn func([]byte, any) error) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeConfig(raw, fn)
}

func decodeConfig(data []byte, fn func([]byte, any) error) (*Config, error) {
	cfg := Default()
	if err := fn(data, cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}
