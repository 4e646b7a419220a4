package groq

import "github.com/koscakluka/kuber-voice/core/llms"

// chatMessage is an entry of the chat completions messages list.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

var chatRoles = map[llms.Role]string{
	llms.RoleUser:  "user",
	llms.RoleModel: "assistant",
}

func toMessages(instructions string, history []llms.HistoryEntry, prompt string) []chatMessage {
	messages := make([]chatMessage, 0, len(history)+2)
	if instructions != "" {
		messages = append(messages, chatMessage{Role: "system", Content: instructions})
	}
	for _, entry := range history {
		role, ok := chatRoles[entry.Role]
		if !ok {
			role = "user"
		}
		messages = append(messages, chatMessage{Role: role, Content: entry.Text})
	}
	return append(messages, chatMessage{Role: "user", Content: prompt})
}
