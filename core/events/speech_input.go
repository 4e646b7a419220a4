package events

const (
	// KindListeningChanged identifies capture session start and end.
	KindListeningChanged Kind = "speech_input.listening_changed"
	// KindTranscriptUpdated identifies mutable live transcript snapshots.
	KindTranscriptUpdated Kind = "speech_input.transcript_updated"
	// KindSpeechEnded identifies sessions ended by the capture device.
	KindSpeechEnded Kind = "speech_input.ended"
	// KindSpeechFailed identifies failed capture sessions.
	KindSpeechFailed Kind = "speech_input.failed"
	// KindSpeechUnavailable identifies voice input requested without a device.
	KindSpeechUnavailable Kind = "speech_input.unavailable"
)

// ListeningChanged reports whether a capture session is active.
type ListeningChanged struct {
	Base
	Listening bool
}

// NewListeningChanged creates a listening changed event.
func NewListeningChanged(listening bool) ListeningChanged {
	return ListeningChanged{Base: NewBase(KindListeningChanged), Listening: listening}
}

// TranscriptUpdated carries the live transcript snapshot.
type TranscriptUpdated struct {
	Base
	Transcript string
}

// NewTranscriptUpdated creates a live transcript snapshot event.
func NewTranscriptUpdated(transcript string) TranscriptUpdated {
	return TranscriptUpdated{Base: NewBase(KindTranscriptUpdated), Transcript: transcript}
}

// SpeechEnded carries the draft left behind by a device-ended session.
type SpeechEnded struct {
	Base
	Draft string
}

// NewSpeechEnded creates a speech ended event.
func NewSpeechEnded(draft string) SpeechEnded {
	return SpeechEnded{Base: NewBase(KindSpeechEnded), Draft: draft}
}

// SpeechFailed carries the error that ended a capture session.
type SpeechFailed struct {
	Base
	Err error
}

// NewSpeechFailed creates a speech failed event.
func NewSpeechFailed(err error) SpeechFailed {
	return SpeechFailed{Base: NewBase(KindSpeechFailed), Err: err}
}

// SpeechUnavailable marks a voice input request without a capture device.
type SpeechUnavailable struct{ Base }

// NewSpeechUnavailable creates a speech unavailable event.
func NewSpeechUnavailable() SpeechUnavailable {
	return SpeechUnavailable{Base: NewBase(KindSpeechUnavailable)}
}
