// Command kuber is a terminal chat client for the Kuber assistant with
// optional voice input and spoken replies.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/kuber-voice/core"
	"github.com/koscakluka/kuber-voice/core/backend"
	"github.com/koscakluka/kuber-voice/core/events"
	"github.com/koscakluka/kuber-voice/core/texttospeech/googletranslate"
	"github.com/koscakluka/kuber-voice/internal/config"
	"github.com/koscakluka/kuber-voice/internal/observe"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "kuber:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, logs go to a file or nowhere.
	var logOutput io.Writer = io.Discard
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOutput = f
	}
	logHandler := slog.NewTextHandler(logOutput, &slog.HandlerOptions{Level: cfg.LogLevel.Level()})
	slog.SetDefault(slog.New(logHandler))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "kuber",
		LogHandler:  logHandler,
	})
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	device, releaseDevice, err := newSpeechDevice(cfg.Speech)
	if err != nil {
		slog.Warn("voice input disabled", "error", err)
		device, releaseDevice = nil, func() {}
	}
	defer releaseDevice()

	var program *tea.Program
	opts := []orchestration.OrchestratorOption{
		orchestration.WithBackend(backend.NewClient(cfg.Client.BackendURL, backend.WithTimeout(cfg.Client.Timeout))),
		orchestration.WithSpeechPlayback(googletranslate.NewPlayer(
			googletranslate.WithSpeed(cfg.Playback.Speed),
			googletranslate.WithCacheFolder(cfg.Playback.CacheFolder),
		)),
		orchestration.WithDefaultLanguage(cfg.Playback.Language),
		orchestration.WithEventHandler(func(event events.Event) {
			if program != nil {
				program.Send(eventMsg{event})
			}
		}),
	}
	if device != nil {
		opts = append(opts, orchestration.WithSpeechDevice(device, speechOptions(cfg.Speech)...))
	}
	orchestrator := orchestration.NewOrchestrator(opts...)
	defer orchestrator.Close()

	program = tea.NewProgram(newModel(ctx, orchestrator), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal ui failed: %w", err)
	}
	return nil
}
