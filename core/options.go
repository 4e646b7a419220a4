package orchestration

import (
	"github.com/koscakluka/kuber-voice/core/events"
	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/koscakluka/kuber-voice/core/speech"
	"github.com/koscakluka/kuber-voice/core/speechtotext"
	"github.com/koscakluka/kuber-voice/core/texttospeech"
)

type OrchestratorOption func(*Orchestrator)

// Backend produces the raw reply for a user message. The returned text is
// expected to contain a response envelope but is validated locally.
type Backend = llms.Generator

func WithBackend(backend Backend) OrchestratorOption {
	return func(o *Orchestrator) { o.backend = backend }
}

// WithSpeechDevice enables voice input through device. opts configure the
// speech session manager; callbacks among them are called before the
// orchestrator's own.
func WithSpeechDevice(device speechtotext.Device, opts ...speech.ManagerOption) OrchestratorOption {
	return func(o *Orchestrator) {
		o.speechDevice = device
		o.speechOptions = append(o.speechOptions, opts...)
	}
}

func WithSpeechPlayback(playback texttospeech.SpeechPlayback) OrchestratorOption {
	return func(o *Orchestrator) { o.playback = playback }
}

// WithEventHandler registers the receiver of orchestration events. Events are
// delivered synchronously from whichever goroutine caused them.
func WithEventHandler(handler func(events.Event)) OrchestratorOption {
	return func(o *Orchestrator) { o.emit = safeEventEmitter(handler) }
}

// WithDefaultLanguage sets the recognition language, the playback language
// for turns without one and the language of fallback and failure replies.
func WithDefaultLanguage(languageCode string) OrchestratorOption {
	return func(o *Orchestrator) {
		if languageCode != "" {
			o.defaultLanguage = languageCode
		}
	}
}
