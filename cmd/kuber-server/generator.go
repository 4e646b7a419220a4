package main

import (
	"context"
	"fmt"

	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/koscakluka/kuber-voice/core/llms/gemini"
	"github.com/koscakluka/kuber-voice/core/llms/groq"
	"github.com/koscakluka/kuber-voice/core/llms/openai"
	"github.com/koscakluka/kuber-voice/internal/config"
)

func newGenerator(ctx context.Context, cfg config.GeneratorConfig) (llms.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		var opts []gemini.GeneratorOption
		if cfg.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Model))
		}
		generator, err := gemini.NewGenerator(ctx, cfg.APIKey, opts...)
		if err != nil {
			return nil, err
		}
		return generator, nil

	case config.ProviderGroq:
		if cfg.APIKey == "" {
			return nil, groq.ErrMissingKey
		}
		var opts []groq.GeneratorOption
		if cfg.Model != "" {
			opts = append(opts, groq.WithModel(cfg.Model))
		}
		return groq.NewGenerator(cfg.APIKey, opts...), nil

	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, openai.ErrMissingKey
		}
		var opts []openai.GeneratorOption
		if cfg.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Model))
		}
		return openai.NewGenerator(cfg.APIKey, opts...), nil

	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}
}
