// Package gemini generates replies with Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/koscakluka/kuber-voice/core/envelope"
	"github.com/koscakluka/kuber-voice/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var ErrMissingKey = errors.New("missing Gemini API key")

// contentGenerator is the subset of [genai.Models] the generator uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Generator struct {
	models       contentGenerator
	model        string
	instructions string
	jsonOutput   bool
}

type GeneratorOption func(*Generator)

func WithModel(model string) GeneratorOption {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

func WithInstructions(instructions string) GeneratorOption {
	return func(g *Generator) { g.instructions = instructions }
}

// WithJSONOutput asks the model for an application/json response. The reply
// is still validated by the caller.
func WithJSONOutput(enabled bool) GeneratorOption {
	return func(g *Generator) { g.jsonOutput = enabled }
}

func NewGenerator(ctx context.Context, apiKey string, opts ...GeneratorOption) (*Generator, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGenerator(client.Models, opts...), nil
}

func newGenerator(models contentGenerator, opts ...GeneratorOption) *Generator {
	g := &Generator{
		models:       models,
		model:        DefaultModel,
		instructions: llms.SystemInstruction(envelope.Schema()),
		jsonOutput:   true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Generator) GenerateReply(ctx context.Context, history []llms.HistoryEntry, prompt string) (string, error) {
	ctx, span := tracer.Start(ctx, "generate reply")
	defer span.End()
	span.SetAttributes(
		attribute.String("request.model", g.model),
		attribute.Int("request.history_length", len(history)),
	)

	config := &genai.GenerateContentConfig{}
	if g.instructions != "" {
		config.SystemInstruction = genai.NewContentFromText(g.instructions, genai.RoleUser)
	}
	if g.jsonOutput {
		config.ResponseMIMEType = "application/json"
	}

	resp, err := g.models.GenerateContent(ctx, g.model, toContents(history, prompt), config)
	if err != nil {
		err = fmt.Errorf("failed to generate content: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	// An empty reply is passed on like any other unusable output.
	text := resp.Text()
	if text == "" {
		logger.Warn("gemini returned an empty reply", "model", g.model)
	}
	return text, nil
}

func toContents(history []llms.HistoryEntry, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, entry := range history {
		role := genai.Role(genai.RoleUser)
		if entry.Role == llms.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(entry.Text, role))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}
