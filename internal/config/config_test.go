package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not be an error: %v", err)
	}

	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.SandboxTimeout != 120*time.Second {
		t.Errorf("SandboxTimeout = %s, want 120s", cfg.SandboxTimeout)
	}
	if cfg.MaxJobTime != 30*time.Minute {
		t.Errorf("MaxJobTime = %s, want 30m", cfg.MaxJobTime)
	}
	if cfg.Model.BaseURL == "" {
		t.Error("Model.BaseURL default should be set")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log_level: debug
work_dir: /tmp/explainer-test
max_attempts: 5
sandbox_timeout: 90s
max_job_time: 15m
poll_interval: 30s
model:
  base_url: http://localhost:8080/v1
  code_model: local-coder
speech:
  tts_url: http://localhost:9090/tts
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.WorkDir != "/tmp/explainer-test" {
		t.Errorf("WorkDir = %q", cfg.WorkDir)
	}
	if cfg.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.MaxAttempts)
	}
	if cfg.SandboxTimeout != 90*time.Second {
		t.Errorf("SandboxTimeout = %s, want 90s", cfg.SandboxTimeout)
	}
	if cfg.MaxJobTime != 15*time.Minute {
		t.Errorf("MaxJobTime = %s, want 15m", cfg.MaxJobTime)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %s, want 30s", cfg.PollInterval)
	}
	if cfg.Model.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("Model.BaseURL = %q", cfg.Model.BaseURL)
	}
	if cfg.Model.CodeModel != "local-coder" {
		t.Errorf("Model.CodeModel = %q", cfg.Model.CodeModel)
	}
	if cfg.Speech.TTSURL != "http://localhost:9090/tts" {
		t.Errorf("Speech.TTSURL = %q", cfg.Speech.TTSURL)
	}

	// Fields the file omits keep their defaults.
	if cfg.Model.PlanModel != "gpt-4o" {
		t.Errorf("Model.PlanModel = %q, want default", cfg.Model.PlanModel)
	}
	if cfg.Speech.UserEnv != "PLAYHT_TTS_USER" {
		t.Errorf("Speech.UserEnv = %q, want default", cfg.Speech.UserEnv)
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed YAML should be an error")
	}
}

func TestLoadConfigInvalidDuration(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unparseable", "sandbox_timeout: soon"},
		{"negative", "max_job_time: -5m"},
		{"zero", "poll_interval: 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfig(path); err == nil {
				t.Errorf("content %q should fail to load", tt.content)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}

	cfg = DefaultConfig()
	cfg.MaxAttempts = 0
	if err := cfg.Validate(); err == nil {
		t.Error("zero max_attempts should fail validation")
	}

	cfg = DefaultConfig()
	cfg.PersonasPath = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty personas_path should fail validation")
	}
}

func TestModelConfigAPIKey(t *testing.T) {
	m := ModelConfig{APIKeyEnv: "EXPLAINER_TEST_KEY"}

	os.Unsetenv("EXPLAINER_TEST_KEY")
	if _, err := m.APIKey(); err == nil {
		t.Error("unset key variable should be an error")
	}

	t.Setenv("EXPLAINER_TEST_KEY", "sk-test")
	key, err := m.APIKey()
	if err != nil {
		t.Fatalf("APIKey failed: %v", err)
	}
	if key != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", key)
	}
}

func TestLoadEnvMissingFile(t *testing.T) {
	if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should not be an error: %v", err)
	}
}

func TestLoadEnvLoadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("EXPLAINER_ENV_TEST=from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EXPLAINER_ENV_TEST", "")
	os.Unsetenv("EXPLAINER_ENV_TEST")

	if err := LoadEnv(path); err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if got := os.Getenv("EXPLAINER_ENV_TEST"); got != "from-file" {
		t.Errorf("EXPLAINER_ENV_TEST = %q, want from-file", got)
	}
}
