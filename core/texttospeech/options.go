package texttospeech

import "context"

// SpeechPlayback speaks text aloud. At most one utterance plays at a time;
// Speak on a busy player interrupts the current utterance first.
type SpeechPlayback interface {
	// Speak starts speaking text and returns once playback has been
	// scheduled. Completion is reported through the ended and error callbacks.
	Speak(ctx context.Context, text string, opts ...SpeakOption) error
	// Cancel silences the current utterance. The ended callback of the
	// cancelled utterance is not guaranteed to fire.
	Cancel() error
}

type SpeakOptions struct {
	// Language is a BCP-47 tag such as "en-IN" or "hi-IN".
	Language string

	// StartedCallback is called when audio starts playing.
	StartedCallback func()
	// EndedCallback is called when the utterance finished playing.
	EndedCallback func()
	// ErrorCallback is called when synthesis or playback fails.
	ErrorCallback func(error)
}

type SpeakOption func(*SpeakOptions)

func WithLanguage(language string) SpeakOption {
	return func(o *SpeakOptions) {
		if language != "" {
			o.Language = language
		}
	}
}

func WithStartedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) { o.StartedCallback = callback }
}

func WithEndedCallback(callback func()) SpeakOption {
	return func(o *SpeakOptions) { o.EndedCallback = callback }
}

func WithErrorCallback(callback func(error)) SpeakOption {
	return func(o *SpeakOptions) { o.ErrorCallback = callback }
}

// NewSpeakOptions applies opts over the defaults. Unset callbacks are
// replaced with no-ops so implementations can call them unconditionally.
func NewSpeakOptions(opts ...SpeakOption) SpeakOptions {
	options := SpeakOptions{Language: "en-IN"}
	for _, opt := range opts {
		opt(&options)
	}

	if options.StartedCallback == nil {
		options.StartedCallback = func() {}
	}
	if options.EndedCallback == nil {
		options.EndedCallback = func() {}
	}
	if options.ErrorCallback == nil {
		options.ErrorCallback = func(error) {}
	}
	return options
}
