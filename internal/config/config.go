// Package config loads explainer configuration and the persona catalog.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ModelConfig holds settings for the language-model backend.
type ModelConfig struct {
	// BaseURL is the chat-completions endpoint base URL.
	BaseURL string `yaml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`

	// ScriptModel writes the narration script.
	ScriptModel string `yaml:"script_model"`

	// CodeModel generates and repairs animation code.
	CodeModel string `yaml:"code_model"`

	// PlanModel produces the structured visual plan.
	PlanModel string `yaml:"plan_model"`

	// ParseModel extracts topic and persona from mention text.
	ParseModel string `yaml:"parse_model"`

	// ImageModel renders still images for the image fallback tier.
	ImageModel string `yaml:"image_model"`

	// TranscribeModel produces the timed transcript of synthesized audio.
	TranscribeModel string `yaml:"transcribe_model"`
}

// SpeechConfig holds settings for the text-to-speech service.
type SpeechConfig struct {
	// TTSURL is the speech synthesis streaming endpoint.
	TTSURL string `yaml:"tts_url"`

	// UserEnv / APIKeyEnv name the environment variables holding the
	// TTS account id and API key.
	UserEnv   string `yaml:"user_env"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// GatewayConfig holds settings for the social-platform gateway.
type GatewayConfig struct {
	// URL is the gateway root.
	URL string `yaml:"url"`

	// TokenEnv names the environment variable holding the bearer token.
	TokenEnv string `yaml:"token_env"`
}

// LipsyncConfig holds settings for the lip-sync service.
type LipsyncConfig struct {
	// URL is the lip-sync job endpoint.
	URL string `yaml:"url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// Config represents explainer configuration options.
type Config struct {
	// LogLevel sets logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written
	LogDir string `yaml:"log_dir"`

	// WorkDir is the base directory for per-run scratch space
	WorkDir string `yaml:"work_dir"`

	// PersonasPath is the persona catalog JSON file
	PersonasPath string `yaml:"personas_path"`

	// PythonPath is the interpreter used to execute generated scripts
	PythonPath string `yaml:"python_path"`

	// FFmpegPath / FFprobePath locate the media binaries ("" = from PATH)
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`

	// MaxAttempts caps sandbox executions per segment in the repair loop
	MaxAttempts int `yaml:"max_attempts"`

	// SandboxTimeout is the wall-clock limit for one sandbox execution
	SandboxTimeout time.Duration `yaml:"sandbox_timeout"`

	// MaxJobTime is the budget after which a tracked job is abandoned
	MaxJobTime time.Duration `yaml:"max_job_time"`

	// PollInterval is the delay between bot polling cycles
	PollInterval time.Duration `yaml:"poll_interval"`

	// JobDBPath is the SQLite file for the job store ("" = in-memory)
	JobDBPath string `yaml:"job_db_path"`

	// Model holds language-model backend settings
	Model ModelConfig `yaml:"model"`

	// Speech holds text-to-speech service settings
	Speech SpeechConfig `yaml:"speech"`

	// Lipsync holds lip-sync service settings
	Lipsync LipsyncConfig `yaml:"lipsync"`

	// Gateway holds social-platform gateway settings
	Gateway GatewayConfig `yaml:"gateway"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogDir:         ".explainer/logs",
		WorkDir:        ".explainer/work",
		PersonasPath:   "data/personas.json",
		PythonPath:     "python3",
		MaxAttempts:    3,
		SandboxTimeout: 120 * time.Second,
		MaxJobTime:     30 * time.Minute,
		PollInterval:   60 * time.Second,
		Model: ModelConfig{
			BaseURL:         "https://api.openai.com/v1",
			APIKeyEnv:       "OPENAI_API_KEY",
			ScriptModel:     "gpt-4o-mini",
			CodeModel:       "gpt-4o",
			PlanModel:       "gpt-4o",
			ParseModel:      "gpt-4o-mini",
			ImageModel:      "dall-e-3",
			TranscribeModel: "whisper-1",
		},
		Speech: SpeechConfig{
			TTSURL:    "https://api.play.ht/api/v2/tts/stream",
			UserEnv:   "PLAYHT_TTS_USER",
			APIKeyEnv: "PLAYHT_TTS_API_KEY",
		},
		Lipsync: LipsyncConfig{
			URL:       "https://api.sync.so/v2/generate",
			APIKeyEnv: "LIPSYNC_API_KEY",
		},
		Gateway: GatewayConfig{
			TokenEnv: "GATEWAY_TOKEN",
		},
	}
}

// LoadEnv loads environment variables from a .env file if one exists.
// A missing file is not an error; explicit environment always wins.
func LoadEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations arrive as strings ("90s", "30m"); parse via a shadow struct.
	type yamlConfig struct {
		LogLevel       string      `yaml:"log_level"`
		LogDir         string      `yaml:"log_dir"`
		WorkDir        string      `yaml:"work_dir"`
		PersonasPath   string      `yaml:"personas_path"`
		PythonPath     string      `yaml:"python_path"`
		FFmpegPath     string      `yaml:"ffmpeg_path"`
		FFprobePath    string      `yaml:"ffprobe_path"`
		MaxAttempts    int         `yaml:"max_attempts"`
		SandboxTimeout string      `yaml:"sandbox_timeout"`
		MaxJobTime     string      `yaml:"max_job_time"`
		PollInterval   string      `yaml:"poll_interval"`
		JobDBPath      string        `yaml:"job_db_path"`
		Model          ModelConfig   `yaml:"model"`
		Speech         SpeechConfig  `yaml:"speech"`
		Lipsync        LipsyncConfig `yaml:"lipsync"`
		Gateway        GatewayConfig `yaml:"gateway"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	if yamlCfg.WorkDir != "" {
		cfg.WorkDir = yamlCfg.WorkDir
	}
	if yamlCfg.PersonasPath != "" {
		cfg.PersonasPath = yamlCfg.PersonasPath
	}
	if yamlCfg.PythonPath != "" {
		cfg.PythonPath = yamlCfg.PythonPath
	}
	if yamlCfg.FFmpegPath != "" {
		cfg.FFmpegPath = yamlCfg.FFmpegPath
	}
	if yamlCfg.FFprobePath != "" {
		cfg.FFprobePath = yamlCfg.FFprobePath
	}
	if yamlCfg.MaxAttempts > 0 {
		cfg.MaxAttempts = yamlCfg.MaxAttempts
	}
	if yamlCfg.JobDBPath != "" {
		cfg.JobDBPath = yamlCfg.JobDBPath
	}
	if yamlCfg.Model.BaseURL != "" {
		cfg.Model.BaseURL = yamlCfg.Model.BaseURL
	}
	if yamlCfg.Model.APIKeyEnv != "" {
		cfg.Model.APIKeyEnv = yamlCfg.Model.APIKeyEnv
	}
	if yamlCfg.Model.ScriptModel != "" {
		cfg.Model.ScriptModel = yamlCfg.Model.ScriptModel
	}
	if yamlCfg.Model.CodeModel != "" {
		cfg.Model.CodeModel = yamlCfg.Model.CodeModel
	}
	if yamlCfg.Model.PlanModel != "" {
		cfg.Model.PlanModel = yamlCfg.Model.PlanModel
	}
	if yamlCfg.Model.ParseModel != "" {
		cfg.Model.ParseModel = yamlCfg.Model.ParseModel
	}
	if yamlCfg.Model.ImageModel != "" {
		cfg.Model.ImageModel = yamlCfg.Model.ImageModel
	}
	if yamlCfg.Model.TranscribeModel != "" {
		cfg.Model.TranscribeModel = yamlCfg.Model.TranscribeModel
	}
	if yamlCfg.Speech.TTSURL != "" {
		cfg.Speech.TTSURL = yamlCfg.Speech.TTSURL
	}
	if yamlCfg.Speech.UserEnv != "" {
		cfg.Speech.UserEnv = yamlCfg.Speech.UserEnv
	}
	if yamlCfg.Speech.APIKeyEnv != "" {
		cfg.Speech.APIKeyEnv = yamlCfg.Speech.APIKeyEnv
	}
	if yamlCfg.Lipsync.URL != "" {
		cfg.Lipsync.URL = yamlCfg.Lipsync.URL
	}
	if yamlCfg.Lipsync.APIKeyEnv != "" {
		cfg.Lipsync.APIKeyEnv = yamlCfg.Lipsync.APIKeyEnv
	}
	if yamlCfg.Gateway.URL != "" {
		cfg.Gateway.URL = yamlCfg.Gateway.URL
	}
	if yamlCfg.Gateway.TokenEnv != "" {
		cfg.Gateway.TokenEnv = yamlCfg.Gateway.TokenEnv
	}

	for _, d := range []struct {
		raw  string
		dest *time.Duration
		name string
	}{
		{yamlCfg.SandboxTimeout, &cfg.SandboxTimeout, "sandbox_timeout"},
		{yamlCfg.MaxJobTime, &cfg.MaxJobTime, "max_job_time"},
		{yamlCfg.PollInterval, &cfg.PollInterval, "poll_interval"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, d.raw, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("%s must be positive, got %q", d.name, d.raw)
		}
		*d.dest = parsed
	}

	return cfg, nil
}

// Validate checks the configuration for values that would break a run.
func (c *Config) Validate() error {
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.SandboxTimeout <= 0 {
		return fmt.Errorf("sandbox_timeout must be positive")
	}
	if c.MaxJobTime <= 0 {
		return fmt.Errorf("max_job_time must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}
	if c.PersonasPath == "" {
		return fmt.Errorf("personas_path is required")
	}
	return nil
}

// APIKey resolves the model API key from the configured environment
// variable. Returns an error if the variable is unset or empty.
func (m ModelConfig) APIKey() (string, error) {
	key := os.Getenv(m.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("%s environment variable not set", m.APIKeyEnv)
	}
	return key, nil
}
