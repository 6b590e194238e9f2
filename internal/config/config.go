// Package config resolves run settings from defaults, an optional YAML or
// JSON file and environment variables. Command-line flags are applied last
// by the caller.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"tabtalk/internal/poll"
)

// Config is the fully resolved configuration.
type Config struct {
	Proxy        string
	ShowUI       bool
	Stealth      bool
	Timeout      time.Duration
	Headers      map[string]string
	WaitFor      string
	WaitTarget   string
	PollTimeout  time.Duration
	PollInterval time.Duration
	Mode         string
	Screenshot   bool
	Format       string
	TelemetryURL string

	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Timeout:      30 * time.Second,
		WaitFor:      "load",
		PollTimeout:  poll.DefaultTimeout,
		PollInterval: poll.DefaultInterval,
		Mode:         "structured",
		Format:       "prompt",
		LLMModel:     "gpt-4o-mini",
	}
}

// FileConfig is the on-disk schema.
type FileConfig struct {
	Proxy      string `yaml:"proxy" json:"proxy"`
	ShowUI     bool   `yaml:"showUI" json:"showUI"`
	Stealth    bool   `yaml:"stealth" json:"stealth"`
	Timeout    string `yaml:"timeout" json:"timeout"`
	Mode       string `yaml:"mode" json:"mode"`
	Screenshot bool   `yaml:"screenshot" json:"screenshot"`
	Format     string `yaml:"format" json:"format"`

	Headers map[string]string `yaml:"headers" json:"headers"`

	Wait struct {
		For    string `yaml:"for" json:"for"`
		Target string `yaml:"target" json:"target"`
	} `yaml:"wait" json:"wait"`

	Poll struct {
		Timeout  string `yaml:"timeout" json:"timeout"`
		Interval string `yaml:"interval" json:"interval"`
	} `yaml:"poll" json:"poll"`

	Telemetry struct {
		URL string `yaml:"url" json:"url"`
	} `yaml:"telemetry" json:"telemetry"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`
}

// LoadFile reads YAML or JSON into FileConfig, choosing by extension.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return fc, nil
}

// ApplyFile overlays every value set in fc.
func (c *Config) ApplyFile(fc FileConfig) error {
	if fc.Proxy != "" {
		c.Proxy = fc.Proxy
	}
	if fc.ShowUI {
		c.ShowUI = true
	}
	if fc.Stealth {
		c.Stealth = true
	}
	if fc.Mode != "" {
		c.Mode = fc.Mode
	}
	if fc.Screenshot {
		c.Screenshot = true
	}
	if fc.Format != "" {
		c.Format = fc.Format
	}
	if len(fc.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = map[string]string{}
		}
		for k, v := range fc.Headers {
			c.Headers[k] = v
		}
	}
	if fc.Wait.For != "" {
		c.WaitFor = fc.Wait.For
	}
	if fc.Wait.Target != "" {
		c.WaitTarget = fc.Wait.Target
	}
	if fc.Telemetry.URL != "" {
		c.TelemetryURL = fc.Telemetry.URL
	}
	if fc.LLM.BaseURL != "" {
		c.LLMBaseURL = fc.LLM.BaseURL
	}
	if fc.LLM.Model != "" {
		c.LLMModel = fc.LLM.Model
	}
	if fc.LLM.APIKey != "" {
		c.LLMAPIKey = fc.LLM.APIKey
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"timeout", fc.Timeout, &c.Timeout},
		{"poll.timeout", fc.Poll.Timeout, &c.PollTimeout},
		{"poll.interval", fc.Poll.Interval, &c.PollInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("config %s: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

// ApplyEnv overlays environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Proxy, "TABTALK_PROXY")
	set(&c.TelemetryURL, "TABTALK_TELEMETRY_URL")
	set(&c.LLMBaseURL, "LLM_BASE_URL")
	set(&c.LLMModel, "LLM_MODEL")
	set(&c.LLMAPIKey, "LLM_API_KEY")
}

// Load resolves defaults, then the file at path (if any), then env.
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Defaults()
	if path != "" {
		fc, err := LoadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := cfg.ApplyFile(fc); err != nil {
			return cfg, err
		}
	}
	if getenv != nil {
		cfg.ApplyEnv(getenv)
	}
	return cfg, cfg.Validate()
}

// Poll returns the poller options.
func (c Config) Poll() poll.Options {
	return poll.Options{Timeout: c.PollTimeout, Interval: c.PollInterval}
}

// Validate rejects values no component can use.
func (c Config) Validate() error {
	switch c.Mode {
	case "structured", "readability":
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	switch c.WaitFor {
	case "", "load":
	case "element", "time":
		if c.WaitTarget == "" {
			return fmt.Errorf("config: a wait target is required when using '%s' wait strategy", c.WaitFor)
		}
	default:
		return fmt.Errorf("config: invalid wait strategy: %s", c.WaitFor)
	}
	if c.Timeout < 0 || c.PollTimeout < 0 || c.PollInterval < 0 {
		return fmt.Errorf("config: negative durations are not allowed")
	}
	return nil
}
