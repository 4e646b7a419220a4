package llms

import "context"

// Generator produces a raw, unvalidated reply for message given the prior
// conversation history.
//
// The returned text is free-form model output that is expected (but not
// guaranteed) to contain a response envelope. Callers must run it through the
// envelope package before using it.
type Generator interface {
	GenerateReply(ctx context.Context, history []HistoryEntry, message string) (string, error)
}

// GeneratorFunc adapts a plain function to [Generator].
type GeneratorFunc func(ctx context.Context, history []HistoryEntry, message string) (string, error)

func (f GeneratorFunc) GenerateReply(ctx context.Context, history []HistoryEntry, message string) (string, error) {
	return f(ctx, history, message)
}
