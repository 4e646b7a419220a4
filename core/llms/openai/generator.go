// Package openai generates replies with the OpenAI Responses API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/koscakluka/kuber-voice/core/envelope"
	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/koscakluka/kuber-voice/internal/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultURL   = "https://api.openai.com/v1/responses"
	DefaultModel = "gpt-4.1-mini"
)

var (
	ErrStatus     = errors.New("non-OK HTTP status")
	ErrNoOutput   = errors.New("response contained no text output")
	ErrMissingKey = errors.New("missing OpenAI API key")
)

type Generator struct {
	apiKey          string
	model           string
	url             string
	instructions    string
	reasoningEffort *string
	client          *http.Client
}

type GeneratorOption func(*Generator)

func WithModel(model string) GeneratorOption {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

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

// WithReasoningEffort is only accepted by reasoning models.
func WithReasoningEffort(effort string) GeneratorOption {
	return func(g *Generator) {
		if effort != "" {
			g.reasoningEffort = utils.Ptr(effort)
		}
	}
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
		Model: g.model,
		Input: toInput(g.instructions, history, prompt),
		Text:  &requestBodyText{Format: requestBodyTextFormat{Type: "json_object"}},
	}
	if g.reasoningEffort != nil {
		reqBody.Reasoning = &requestBodyReasoning{Effort: g.reasoningEffort}
	}
	span.SetAttributes(attribute.String("request.model", g.model))

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

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(fmt.Errorf("error reading response body: %w", err))
	}
	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		logger.Warn("openai request failed", "status", resp.Status, "body", string(bodyBytes))
		return fail(fmt.Errorf("%w: %s", ErrStatus, resp.Status))
	}

	var responseBody responseBody
	if err := json.Unmarshal(bodyBytes, &responseBody); err != nil {
		return fail(fmt.Errorf("error unmarshalling response body: %w", err))
	}

	var text strings.Builder
	for _, output := range responseBody.Output {
		if output.Type != "message" {
			continue
		}
		for _, content := range output.Content {
			switch content.Type {
			case "output_text":
				text.WriteString(content.Text)
			case "refusal":
				text.WriteString(content.Refusal)
			}
		}
	}
	if text.Len() == 0 {
		return fail(ErrNoOutput)
	}
	return text.String(), nil
}

type requestBody struct {
	Model     string                `json:"model"`
	Input     []inputItem           `json:"input"`
	Text      *requestBodyText      `json:"text,omitempty"`
	Reasoning *requestBodyReasoning `json:"reasoning,omitempty"`
}

type requestBodyText struct {
	Format requestBodyTextFormat `json:"format"`
}

type requestBodyTextFormat struct {
	Type string `json:"type"`
}

type requestBodyReasoning struct {
	Effort *string `json:"effort,omitempty"`
}

type responseBody struct {
	Output []struct {
		// Type is "message", "reasoning" or "function_call".
		Type    string `json:"type"`
		Content []struct {
			// Type is "output_text" or "refusal".
			Type    string `json:"type"`
			Text    string `json:"text,omitempty"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
}
