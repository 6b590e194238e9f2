package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Equal(t, 5*time.Second, cfg.Poll().Timeout)
	assert.Equal(t, 100*time.Millisecond, cfg.Poll().Interval)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeFile(t, "tabtalk.yaml", `
proxy: http://file-proxy:8080
mode: readability
timeout: 10s
headers:
  Accept-Language: en-US
wait:
  for: element
  target: ytd-watch-flexy
poll:
  timeout: 2s
  interval: 50ms
telemetry:
  url: http://collector
llm:
  base: http://file-llm/v1
  model: file-model
`)
	cfg, err := Load(path, envMap(map[string]string{
		"LLM_MODEL":     "env-model",
		"TABTALK_PROXY": " ",
	}))
	require.NoError(t, err)

	assert.Equal(t, "http://file-proxy:8080", cfg.Proxy)
	assert.Equal(t, "readability", cfg.Mode)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.PollTimeout)
	assert.Equal(t, 50*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, "http://collector", cfg.TelemetryURL)
	assert.Equal(t, "http://file-llm/v1", cfg.LLMBaseURL)
	assert.Equal(t, "env-model", cfg.LLMModel)
	assert.Equal(t, "prompt", cfg.Format)
	assert.Equal(t, map[string]string{"Accept-Language": "en-US"}, cfg.Headers)
	assert.Equal(t, "element", cfg.WaitFor)
	assert.Equal(t, "ytd-watch-flexy", cfg.WaitTarget)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "tabtalk.json", `{"format":"markdown","screenshot":true,"stealth":true,"llm":{"key":"k"}}`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.Format)
	assert.True(t, cfg.Screenshot)
	assert.True(t, cfg.Stealth)
	assert.Equal(t, "k", cfg.LLMAPIKey)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)

	_, err = Load(writeFile(t, "bad.yaml", "timeout: soon\n"), nil)
	assert.ErrorContains(t, err, "config timeout")

	_, err = Load(writeFile(t, "mode.yaml", "mode: fancy\n"), nil)
	assert.ErrorContains(t, err, "unknown mode")

	_, err = Load(writeFile(t, "wait.yaml", "wait:\n  for: time\n"), nil)
	assert.ErrorContains(t, err, "wait target is required")

	_, err = Load(writeFile(t, "strategy.yaml", "wait:\n  for: forever\n"), nil)
	assert.ErrorContains(t, err, "invalid wait strategy")
}
