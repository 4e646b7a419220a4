package orchestration

import (
	"sync"

	"github.com/google/uuid"
	"github.com/koscakluka/kuber-voice/core/llms"
)

// conversation is the append-only turn history of a single session.
type conversation struct {
	mu    sync.RWMutex
	turns []llms.Turn
}

func (c *conversation) Append(role llms.Role, text, languageCode string) llms.Turn {
	turn := llms.Turn{
		ID:           uuid.NewString(),
		Role:         role,
		Text:         text,
		LanguageCode: languageCode,
	}

	c.mu.Lock()
	c.turns = append(c.turns, turn)
	c.mu.Unlock()

	return turn
}

func (c *conversation) History() []llms.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	history := make([]llms.Turn, len(c.turns))
	copy(history, c.turns)
	return history
}

func (c *conversation) Turn(id string) (llms.Turn, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, turn := range c.turns {
		if turn.ID == id {
			return turn, true
		}
	}
	return llms.Turn{}, false
}
