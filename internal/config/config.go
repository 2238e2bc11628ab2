// Package config handles configuration loading and defaults for
// stenotaped.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"stenotape/internal/logging"
	"stenotape/internal/steno"
)

// Defaults and bounds for the renderer options.
const (
	DefaultBarTimeUnit  = 0.2
	MinBarTimeUnit      = 0.01
	DefaultBarMaxWidth  = 5
	MaxBarMaxWidth      = 100
	DefaultOutputFormat = "%b |%s| %t  %h"
)

// Config holds the complete tape renderer configuration.
type Config struct {
	// BarTimeUnit is the pause in seconds represented by one + of the
	// timing bar.
	BarTimeUnit float64 `toml:"bar_time_unit" json:"bar_time_unit" yaml:"bar_time_unit"`

	// BarMaxWidth is the width of the timing bar field in characters.
	// 0 disables the bar.
	BarMaxWidth int `toml:"bar_max_width" json:"bar_max_width" yaml:"bar_max_width"`

	// OutputStyle selects what the text field shows: "definition" or
	// "translation".
	OutputStyle string `toml:"output_style" json:"output_style" yaml:"output_style"`

	// OutputFormat is the line template. %b is the timing bar, %s the
	// chord layout, %t the text, %h the hints and %% a literal %.
	OutputFormat string `toml:"output_format" json:"output_format" yaml:"output_format"`

	// Tape configuration for the output file.
	Tape TapeConfig `toml:"tape" json:"tape" yaml:"tape"`

	// Layout configuration for the chord display.
	Layout LayoutConfig `toml:"layout" json:"layout" yaml:"layout"`

	// Dictionaries configuration for hint lookups.
	Dictionaries DictionariesConfig `toml:"dictionaries" json:"dictionaries" yaml:"dictionaries"`

	// Host configuration for the stroke feed.
	Host HostConfig `toml:"host" json:"host" yaml:"host"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// File is the path the configuration was loaded from, empty when
	// running on defaults.
	File string `toml:"-" json:"-" yaml:"-"`
}

// TapeConfig holds the output file configuration.
type TapeConfig struct {
	// Path is where tape lines are appended.
	Path string `toml:"path" json:"path" yaml:"path"`
}

// LayoutConfig describes the chord display. Empty keys mean the builtin
// English stenotype layout.
type LayoutConfig struct {
	// Keys is the full key order of the machine, steno side markers
	// included.
	Keys []string `toml:"keys" json:"keys" yaml:"keys"`

	// Numbers maps number aliases to the keys they share a position
	// with.
	Numbers map[string]string `toml:"numbers" json:"numbers" yaml:"numbers"`

	// NumberKey is the key implied by pressing any number alias.
	NumberKey string `toml:"number_key" json:"number_key" yaml:"number_key"`
}

// DictionariesConfig holds hint lookup configuration.
type DictionariesConfig struct {
	// Paths are the dictionary files to index, in priority order.
	Paths []string `toml:"paths" json:"paths" yaml:"paths"`

	// Watch reloads dictionaries when their files change.
	Watch bool `toml:"watch" json:"watch" yaml:"watch"`
}

// HostConfig holds stroke feed configuration.
type HostConfig struct {
	// Socket is the Unix socket the steno engine connects to.
	Socket string `toml:"socket" json:"socket" yaml:"socket"`

	// Source selects where events come from: "socket" or "stdin".
	Source string `toml:"source" json:"source" yaml:"source"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, or error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log output format: text or json.
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is where logs go: stdout, stderr, file, or both.
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file location when Output includes "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BarTimeUnit:  DefaultBarTimeUnit,
		BarMaxWidth:  DefaultBarMaxWidth,
		OutputStyle:  "definition",
		OutputFormat: DefaultOutputFormat,
		Tape:         TapeConfig{Path: DefaultTapePath()},
		Dictionaries: DictionariesConfig{Watch: true},
		Host:         HostConfig{Socket: DefaultSocketPath(), Source: "socket"},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads the configuration file at path, or the first discovered
// one when path is empty. A missing file yields the defaults. Option
// values that cannot be used fall back to their defaults; the returned
// error lists what was ignored while the returned config is always
// usable.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	raw := make(map[string]any)
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return cfg, fmt.Errorf("decode TOML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("decode JSON: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %q", ext)
	}

	cfg.File = path
	return cfg, cfg.apply(raw)
}

// apply copies recognized options out of raw, keeping the default for
// any value it cannot use.
func (c *Config) apply(raw map[string]any) error {
	var ignored []error
	note := func(key string, v any) {
		ignored = append(ignored, fmt.Errorf("ignoring %s: unusable value %v", key, v))
	}

	if v, ok := raw["bar_time_unit"]; ok {
		if f, ok := asFloat(v); ok {
			c.BarTimeUnit = max(f, MinBarTimeUnit)
		} else {
			note("bar_time_unit", v)
		}
	}
	if v, ok := raw["bar_max_width"]; ok {
		if n, ok := asInt(v); ok {
			c.BarMaxWidth = min(max(n, 0), MaxBarMaxWidth)
		} else {
			note("bar_max_width", v)
		}
	}
	if v, ok := raw["output_style"]; ok {
		if s, ok := asString(v); ok {
			c.OutputStyle = s
		} else {
			note("output_style", v)
		}
	}
	if v, ok := raw["output_format"]; ok {
		if s, ok := asString(v); ok && s != "" {
			c.OutputFormat = s
		} else {
			note("output_format", v)
		}
	}

	if t, ok := asTable(raw["tape"]); ok {
		if v, ok := t["path"]; ok {
			if s, ok := asString(v); ok && s != "" {
				c.Tape.Path = s
			} else {
				note("tape.path", v)
			}
		}
	}

	if t, ok := asTable(raw["layout"]); ok {
		if v, ok := t["keys"]; ok {
			if keys, ok := asStringSlice(v); ok && len(keys) > 0 {
				c.Layout.Keys = keys
			} else {
				note("layout.keys", v)
			}
		}
		if v, ok := t["numbers"]; ok {
			if m, ok := asStringMap(v); ok {
				c.Layout.Numbers = m
			} else {
				note("layout.numbers", v)
			}
		}
		if v, ok := t["number_key"]; ok {
			if s, ok := asString(v); ok {
				c.Layout.NumberKey = s
			} else {
				note("layout.number_key", v)
			}
		}
	}

	if t, ok := asTable(raw["dictionaries"]); ok {
		if v, ok := t["paths"]; ok {
			if paths, ok := asStringSlice(v); ok {
				c.Dictionaries.Paths = paths
			} else {
				note("dictionaries.paths", v)
			}
		}
		if v, ok := t["watch"]; ok {
			if b, ok := asBool(v); ok {
				c.Dictionaries.Watch = b
			} else {
				note("dictionaries.watch", v)
			}
		}
	}

	if t, ok := asTable(raw["host"]); ok {
		if v, ok := t["socket"]; ok {
			if s, ok := asString(v); ok && s != "" {
				c.Host.Socket = s
			} else {
				note("host.socket", v)
			}
		}
		if v, ok := t["source"]; ok {
			if s, ok := asString(v); ok && (s == "socket" || s == "stdin") {
				c.Host.Source = s
			} else {
				note("host.source", v)
			}
		}
	}

	if t, ok := asTable(raw["logging"]); ok {
		if v, ok := t["level"]; ok {
			if s, ok := asString(v); ok {
				if _, err := logging.ParseLevel(s); err == nil {
					c.Logging.Level = s
				} else {
					note("logging.level", v)
				}
			} else {
				note("logging.level", v)
			}
		}
		if v, ok := t["format"]; ok {
			if s, ok := asString(v); ok {
				if _, err := logging.ParseFormat(s); err == nil {
					c.Logging.Format = s
				} else {
					note("logging.format", v)
				}
			} else {
				note("logging.format", v)
			}
		}
		if v, ok := t["output"]; ok {
			if s, ok := asString(v); ok && s != "" {
				c.Logging.Output = s
			} else {
				note("logging.output", v)
			}
		}
		if v, ok := t["file_path"]; ok {
			if s, ok := asString(v); ok && s != "" {
				c.Logging.FilePath = s
			} else {
				note("logging.file_path", v)
			}
		}
	}

	return errors.Join(ignored...)
}

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables are prefixed with STENOTAPE_.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("STENOTAPE_TAPE_PATH"); v != "" {
		c.Tape.Path = v
	}
	if v := os.Getenv("STENOTAPE_SOCKET_PATH"); v != "" {
		c.Host.Socket = v
	}
	if v := os.Getenv("STENOTAPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STENOTAPE_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

// BarUnit returns the timing bar unit as a duration.
func (c *Config) BarUnit() time.Duration {
	return time.Duration(c.BarTimeUnit * float64(time.Second))
}

// StenoLayout builds the configured chord layout. Nil means the builtin
// English stenotype.
func (c *Config) StenoLayout() *steno.Layout {
	if len(c.Layout.Keys) == 0 {
		return nil
	}
	return &steno.Layout{
		Keys:      c.Layout.Keys,
		Numbers:   c.Layout.Numbers,
		NumberKey: c.Layout.NumberKey,
	}
}

// Value coercion helpers. Each decoder hands back its own types for
// numbers and nested tables, and option values may arrive as strings.

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case float32:
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		return false, false
	}
}

func asTable(v any) (map[string]any, bool) {
	t, ok := v.(map[string]any)
	return t, ok
}

func asStringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return s, true
	case []any:
		out := make([]string, 0, len(s))
		for _, e := range s {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}

func asStringMap(v any) (map[string]string, bool) {
	switch m := v.(type) {
	case map[string]string:
		return m, true
	case map[string]any:
		out := make(map[string]string, len(m))
		for k, e := range m {
			str, ok := e.(string)
			if !ok {
				return nil, false
			}
			out[k] = str
		}
		return out, true
	default:
		return nil, false
	}
}
