package openai

import "github.com/koscakluka/kuber-voice/core/llms"

// inputItem is a message item of the Responses API input list.
type inputItem struct {
	Type    string    `json:"type"`
	Role    inputRole `json:"role"`
	Content string    `json:"content"`
}

type inputRole string

const (
	roleDeveloper inputRole = "developer"
	roleUser      inputRole = "user"
	roleAssistant inputRole = "assistant"
)

func roleFor(role llms.Role) inputRole {
	if role == llms.RoleModel {
		return roleAssistant
	}
	return roleUser
}

// toInput lays out the instructions, the prior turns and the new prompt in
// conversation order.
func toInput(instructions string, history []llms.HistoryEntry, prompt string) []inputItem {
	items := make([]inputItem, 0, len(history)+2)
	if instructions != "" {
		items = append(items, inputItem{Type: "message", Role: roleDeveloper, Content: instructions})
	}
	for _, entry := range history {
		items = append(items, inputItem{Type: "message", Role: roleFor(entry.Role), Content: entry.Text})
	}
	return append(items, inputItem{Type: "message", Role: roleUser, Content: prompt})
}
