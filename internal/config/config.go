// Package config loads the YAML configuration shared by the kuber binaries.
package config

import (
	"log/slog"
	"time"
)

type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level maps the configured level onto slog. Unknown values log at info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"

	AudioInputMiniaudio = "miniaudio"
	AudioInputPortaudio = "portaudio"

	SpeechModeAuto      = "auto"
	SpeechModeRestart   = "restart"
	SpeechModeTerminate = "terminate"
)

type Config struct {
	LogLevel  LogLevel        `yaml:"log_level"`
	LogFile   string          `yaml:"log_file"`
	Server    ServerConfig    `yaml:"server"`
	Generator GeneratorConfig `yaml:"generator"`
	Client    ClientConfig    `yaml:"client"`
	Speech    SpeechConfig    `yaml:"speech"`
	Playback  PlaybackConfig  `yaml:"playback"`
}

// ServerConfig configures kuber-server.
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// GeneratorConfig selects the language model behind the chat route. The API
// key is never read from the file.
type GeneratorConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"-"`
}

// ClientConfig configures how the terminal client reaches the backend.
type ClientConfig struct {
	BackendURL string        `yaml:"backend_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

type SpeechConfig struct {
	// Mode is one of auto, restart or terminate. Auto asks the device.
	Mode         string `yaml:"mode"`
	RestartLimit int    `yaml:"restart_limit"`
	Language     string `yaml:"language"`
	Model        string `yaml:"model"`
	AudioInput   string `yaml:"audio_input"`
	APIKey       string `yaml:"-"`
}

type PlaybackConfig struct {
	Language    string  `yaml:"language"`
	Speed       float32 `yaml:"speed"`
	CacheFolder string  `yaml:"cache_folder"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: LogInfo,
		Server: ServerConfig{
			ListenAddr:  ":8080",
			MetricsPath: "/metrics",
		},
		Generator: GeneratorConfig{
			Provider: ProviderGemini,
		},
		Client: ClientConfig{
			BackendURL: "http://localhost:8080",
			Timeout:    60 * time.Second,
		},
		Speech: SpeechConfig{
			Mode:       SpeechModeAuto,
			Language:   "en-IN",
			AudioInput: AudioInputMiniaudio,
		},
		Playback: PlaybackConfig{
			Language: "en-IN",
			Speed:    1,
		},
	}
}
