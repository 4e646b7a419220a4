package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variables holding provider secrets.
const (
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGroqAPIKey     = "GROQ_API_KEY"
	EnvOpenAIAPIKey   = "OPENAI_API_KEY"
	EnvDeepgramAPIKey = "DEEPGRAM_API_KEY"
)

var (
	validProviders   = []string{ProviderGemini, ProviderGroq, ProviderOpenAI}
	validAudioInputs = []string{AudioInputMiniaudio, AudioInputPortaudio}
	validSpeechModes = []string{SpeechModeAuto, SpeechModeRestart, SpeechModeTerminate}
)

// Load reads the YAML file at path on top of [Default]. An empty path loads
// the defaults alone. Secrets are always taken from the environment.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromReader(strings.NewReader(""))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes YAML from r over the defaults, applies environment
// secrets and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	applyEnv(cfg, os.Getenv)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	switch cfg.Generator.Provider {
	case ProviderGemini:
		cfg.Generator.APIKey = getenv(EnvGeminiAPIKey)
	case ProviderGroq:
		cfg.Generator.APIKey = getenv(EnvGroqAPIKey)
	case ProviderOpenAI:
		cfg.Generator.APIKey = getenv(EnvOpenAIAPIKey)
	}
	cfg.Speech.APIKey = getenv(EnvDeepgramAPIKey)
}

// Validate checks cfg and returns every problem found joined into one error.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	if cfg.Server.ListenAddr == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if cfg.Server.MetricsPath != "" && !strings.HasPrefix(cfg.Server.MetricsPath, "/") {
		errs = append(errs, fmt.Errorf("server.metrics_path %q must start with /", cfg.Server.MetricsPath))
	}

	if !slices.Contains(validProviders, cfg.Generator.Provider) {
		errs = append(errs, fmt.Errorf("generator.provider %q is invalid; valid values: %s", cfg.Generator.Provider, strings.Join(validProviders, ", ")))
	}

	if cfg.Client.BackendURL == "" {
		errs = append(errs, errors.New("client.backend_url is required"))
	}
	if cfg.Client.Timeout < 0 {
		errs = append(errs, fmt.Errorf("client.timeout %s must not be negative", cfg.Client.Timeout))
	}

	if !slices.Contains(validSpeechModes, cfg.Speech.Mode) {
		errs = append(errs, fmt.Errorf("speech.mode %q is invalid; valid values: %s", cfg.Speech.Mode, strings.Join(validSpeechModes, ", ")))
	}
	if cfg.Speech.RestartLimit < 0 {
		errs = append(errs, fmt.Errorf("speech.restart_limit %d must not be negative", cfg.Speech.RestartLimit))
	}
	if !slices.Contains(validAudioInputs, cfg.Speech.AudioInput) {
		errs = append(errs, fmt.Errorf("speech.audio_input %q is invalid; valid values: %s", cfg.Speech.AudioInput, strings.Join(validAudioInputs, ", ")))
	}
	if cfg.Speech.Language == "" {
		errs = append(errs, errors.New("speech.language is required"))
	}

	if cfg.Playback.Language == "" {
		errs = append(errs, errors.New("playback.language is required"))
	}
	if cfg.Playback.Speed < 0.5 || cfg.Playback.Speed > 2 {
		errs = append(errs, fmt.Errorf("playback.speed %.2f is out of range [0.5, 2.0]", cfg.Playback.Speed))
	}

	return errors.Join(errs...)
}
