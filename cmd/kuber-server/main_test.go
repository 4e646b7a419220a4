package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/koscakluka/kuber-voice/core/backend"
	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/koscakluka/kuber-voice/core/llms/gemini"
	"github.com/koscakluka/kuber-voice/core/llms/groq"
	"github.com/koscakluka/kuber-voice/core/llms/openai"
	"github.com/koscakluka/kuber-voice/internal/config"
	"github.com/prometheus/client_golang/prometheus"
)

func TestNewGeneratorRequiresKey(t *testing.T) {
	cases := map[string]error{
		config.ProviderGemini: gemini.ErrMissingKey,
		config.ProviderGroq:   groq.ErrMissingKey,
		config.ProviderOpenAI: openai.ErrMissingKey,
	}
	for provider, expected := range cases {
		_, err := newGenerator(context.Background(), config.GeneratorConfig{Provider: provider})
		if !errors.Is(err, expected) {
			t.Fatalf("expected %v for %s, got %v", expected, provider, err)
		}
	}
}

func TestNewGeneratorSelectsProvider(t *testing.T) {
	generator, err := newGenerator(context.Background(), config.GeneratorConfig{Provider: config.ProviderGroq, APIKey: "key"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := generator.(*groq.Generator); !ok {
		t.Fatalf("expected groq generator, got %T", generator)
	}

	if _, err := newGenerator(context.Background(), config.GeneratorConfig{Provider: "claude", APIKey: "key"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestMuxRoutesChatAndMetrics(t *testing.T) {
	generator := llms.GeneratorFunc(func(ctx context.Context, history []llms.HistoryEntry, message string) (string, error) {
		return `{"reply":"Namaste","language_code":"hi-IN"}`, nil
	})
	server := httptest.NewServer(newMux(backend.NewHandler(generator), "/metrics", prometheus.NewRegistry()))
	defer server.Close()

	resp, err := http.Post(server.URL+backend.ChatPath, "application/json", strings.NewReader(`{"history":[],"message":"hi"}`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "Namaste") {
		t.Fatalf("expected reply, got %d %s", resp.StatusCode, body)
	}

	resp, err = http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected metrics endpoint, got %d", resp.StatusCode)
	}
}
