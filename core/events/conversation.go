package events

import "github.com/koscakluka/kuber-voice/core/llms"

const (
	// KindTurnAppended identifies a turn appended to the conversation history.
	KindTurnAppended Kind = "conversation.turn_appended"
	// KindRequestPendingChanged identifies backend request state changes.
	KindRequestPendingChanged Kind = "conversation.request_pending_changed"
)

// TurnAppended carries a copy of the appended turn.
type TurnAppended struct {
	Base
	Turn llms.Turn
}

// NewTurnAppended creates a turn appended event.
func NewTurnAppended(turn llms.Turn) TurnAppended {
	return TurnAppended{Base: NewBase(KindTurnAppended), Turn: turn}
}

// RequestPendingChanged reports whether a backend request is in flight.
type RequestPendingChanged struct {
	Base
	Pending bool
}

// NewRequestPendingChanged creates a request pending changed event.
func NewRequestPendingChanged(pending bool) RequestPendingChanged {
	return RequestPendingChanged{Base: NewBase(KindRequestPendingChanged), Pending: pending}
}
