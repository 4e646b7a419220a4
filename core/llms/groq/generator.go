// Package groq generates replies with Groq's OpenAI-compatible chat
// completions API.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/koscakluka/kuber-voice/core/envelope"
	"github.com/koscakluka/kuber-voice/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel = "llama-3.3-70b-versatile"
)

var (
	ErrStatus     = errors.New("non-OK HTTP status")
	ErrNoChoices  = errors.New("response contained no choices")
	ErrMissingKey = errors.New("missing Groq API key")
)

type Generator struct {
	apiKey       string
	model        string
	url          string
	instructions string
	client       *http.Client
}

type GeneratorOption func(*Generator)

func WithModel(model string) GeneratorOption {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithURL points the generator at another OpenAI-compatible endpoint.
func WithURL(url string) GeneratorOption {
	return func(g *Generator) {
		if url != "" {
			g.url = url
		}
	}
}

func WithHTTPClient(client *http.Client) GeneratorOption {
	return func(g *Generator) {
		if client != nil {
			g.client = client
		}
	}
}

func WithInstructions(instructions string) GeneratorOption {
	return func(g *Generator) { g.instructions = instructions }
}

func NewGenerator(apiKey string, opts ...GeneratorOption) *Generator {
	g := &Generator{
		apiKey:       apiKey,
		model:        DefaultModel,
		url:          DefaultURL,
		instructions: llms.SystemInstruction(envelope.Schema()),
		client:       &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) GenerateReply(ctx context.Context, history []llms.HistoryEntry, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "generate reply")
	defer span.End()

	fail := func(err error) (string, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	if g.apiKey == "" {
		return fail(ErrMissingKey)
	}

	reqBody := requestBody{
		Model:          g.model,
		Messages:       toMessages(g.instructions, history, prompt),
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	span.SetAttributes(
		attribute.String("request.model", g.model),
		attribute.Int("request.history_length", len(history)),
	)

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fail(fmt.Errorf("error marshalling JSON: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(requestBodyBytes))
	if err != nil {
		return fail(fmt.Errorf("error creating HTTP request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return fail(fmt.Errorf("error sending request: %w", err))
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	respBodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("error reading response body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		span.SetAttributes(attribute.String("response.error", string(respBodyBytes)))
		logger.Warn("groq request failed", "status", resp.Status)
		return fail(fmt.Errorf("%w: %s", ErrStatus, resp.Status))
	}

	var responseBody responseBody
	if err := json.Unmarshal(respBodyBytes, &responseBody); err != nil {
		return fail(fmt.Errorf("error unmarshalling response: %w", err))
	}
	if len(responseBody.Choices) == 0 {
		return fail(ErrNoChoices)
	}

	if usage := responseBody.Usage; usage != nil {
		span.SetAttributes(
			attribute.Int("response.prompt_tokens", usage.PromptTokens),
			attribute.Int("response.completion_tokens", usage.CompletionTokens),
		)
	}
	return responseBody.Choices[0].Message.Content, nil
}

type requestBody struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type responseBody struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role,omitempty"`
			Content string `json:"content,omitempty"`
		} `json:"message"`
		FinishReason *string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
