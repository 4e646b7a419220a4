package events

const (
	// KindAssistantPlaybackStarted identifies playback start for a model turn.
	KindAssistantPlaybackStarted Kind = "assistant_playback.started"
	// KindAssistantPlaybackEnded identifies playback completion or interruption.
	KindAssistantPlaybackEnded Kind = "assistant_playback.ended"
	// KindAssistantPlaybackFailed identifies playback failures.
	KindAssistantPlaybackFailed Kind = "assistant_playback.failed"
)

// AssistantPlaybackStarted marks the start of playback for a model turn.
type AssistantPlaybackStarted struct {
	Base
	TurnID string
}

// NewAssistantPlaybackStarted creates an assistant playback started event.
func NewAssistantPlaybackStarted(turnID string) AssistantPlaybackStarted {
	return AssistantPlaybackStarted{Base: NewBase(KindAssistantPlaybackStarted), TurnID: turnID}
}

// AssistantPlaybackEnded marks the end of playback for a model turn.
type AssistantPlaybackEnded struct {
	Base
	TurnID      string
	Interrupted bool
}

// NewAssistantPlaybackEnded creates an assistant playback ended event.
func NewAssistantPlaybackEnded(turnID string, interrupted bool) AssistantPlaybackEnded {
	return AssistantPlaybackEnded{Base: NewBase(KindAssistantPlaybackEnded), TurnID: turnID, Interrupted: interrupted}
}

// AssistantPlaybackFailed carries a playback error for a model turn.
type AssistantPlaybackFailed struct {
	Base
	TurnID string
	Err    error
}

// NewAssistantPlaybackFailed creates an assistant playback failed event.
func NewAssistantPlaybackFailed(turnID string, err error) AssistantPlaybackFailed {
	return AssistantPlaybackFailed{Base: NewBase(KindAssistantPlaybackFailed), TurnID: turnID, Err: err}
}
