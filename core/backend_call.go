package orchestration

import (
	"context"
	"fmt"

	"github.com/koscakluka/kuber-voice/core/llms"
)

// generateReply calls the backend and reports a panic inside it as an error.
func generateReply(ctx context.Context, backend Backend, history []llms.HistoryEntry, message string) (raw string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("backend panicked: %v", recovered)
		}
	}()

	if backend == nil {
		return "", ErrNoBackend
	}
	return backend.GenerateReply(ctx, history, message)
}
