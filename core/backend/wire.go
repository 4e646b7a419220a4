// Package backend carries conversation turns between the client and the
// reply service over HTTP.
//
// The wire contract is a single route:
//
//	POST /api/chat
//	{"history": [{"role": "user|model", "text": "..."}], "message": "..."}
//	-> {"reply": "...", "language_code": "..."}
package backend

import "github.com/koscakluka/kuber-voice/core/llms"

const ChatPath = "/api/chat"

type ChatRequest struct {
	History []llms.HistoryEntry `json:"history"`
	Message string              `json:"message"`
}
