package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Native backend names accepted in File.Native.
const (
	NativeAuto       = "auto"
	NativeWSTP       = "wstp"
	NativeSubprocess = "subprocess"
)

// minCheckBits is the narrowest operand width the check drivers accept.
const minCheckBits = 2

// File is the on-disk configuration used by the command line tools.
type File struct {
	KernelPath   string            `yaml:"kernel_path"`
	Native       string            `yaml:"native"`
	LogLevel     string            `yaml:"log_level"`
	MaxFrameSize int               `yaml:"max_frame_size"`
	Env          map[string]string `yaml:"env"`
	Check        CheckConfig       `yaml:"check"`
}

// CheckConfig holds defaults for the kernel cross-check drivers.
type CheckConfig struct {
	Trials int `yaml:"trials"`
	Bits   int `yaml:"bits"`
}

// Load reads the YAML file at path over the built-in defaults and applies
// environment overrides. A missing file is not an error.
func Load(path string) (*File, error) {
	cfg := &File{
		KernelPath: DefaultKernelPath(),
		Native:     NativeAuto,
		LogLevel:   "warn",
		Env:        make(map[string]string),
		Check: CheckConfig{
			Trials: 1024,
			Bits:   256,
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *File) {
	if v := os.Getenv("MATHLINK_KERNEL_PATH"); v != "" {
		cfg.KernelPath = v
	}

	if v := os.Getenv("MATHLINK_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}

	if v := os.Getenv("MATHLINK_NATIVE"); v != "" {
		cfg.Native = v
	}
}

func (f *File) validate() error {
	switch f.Native {
	case NativeAuto, NativeWSTP, NativeSubprocess:
	default:
		return fmt.Errorf("invalid native backend %q: want %s, %s or %s",
			f.Native, NativeAuto, NativeWSTP, NativeSubprocess)
	}

	if _, err := ParseLevel(f.LogLevel); err != nil {
		return err
	}

	if f.Check.Trials < 0 {
		return fmt.Errorf("check trials must not be negative")
	}

	if f.Check.Bits < minCheckBits {
		return fmt.Errorf("check bits must be at least %d, got %d", minCheckBits, f.Check.Bits)
	}

	return nil
}

// Level returns the configured slog level.
func (f *File) Level() slog.Level {
	level, err := ParseLevel(f.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}

	return level
}

// ParseLevel converts a level name (debug, info, warn, error) to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q", name)
	}
}
