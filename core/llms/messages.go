package llms

import (
	"github.com/jinzhu/copier"
)

// Role describes who authored a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

func (r Role) IsValid() bool { return r == RoleUser || r == RoleModel }

// Turn is a single message exchanged in the conversation. Model turns carry
// the language tag they should be spoken in.
//
// Turns are immutable once they are appended to the conversation history.
type Turn struct {
	ID   string
	Role Role
	Text string

	// LanguageCode is a BCP-47 tag (e.g. "en-IN", "hi-IN"). It is a client
	// side annotation and never sent back to the backend.
	LanguageCode string
}

// HistoryEntry is the backend's view of a turn: role and text only.
type HistoryEntry struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// ToHistory strips client-only annotations from turns, producing the history
// that is sent to the backend.
func ToHistory(turns []Turn) []HistoryEntry {
	history := make([]HistoryEntry, 0, len(turns))
	if len(turns) == 0 {
		return history
	}

	if err := copier.Copy(&history, turns); err != nil {
		history = history[:0]
		for _, turn := range turns {
			history = append(history, HistoryEntry{Role: turn.Role, Text: turn.Text})
		}
	}
	return history
}
