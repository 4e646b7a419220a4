package speechtotext

import (
	"context"

	"github.com/koscakluka/kuber-voice/core/audio"
)

// Device is a speech capture device that reports incremental recognition
// hypotheses until it is stopped or ends on its own.
//
// End of capture is reported through [CaptureOptions.EndCallback] both when
// the caller requested it (Stop/Abort) and when the device gave up on its
// own; callers have to track which one they asked for.
type Device interface {
	Capture(ctx context.Context, opts ...CaptureOption) error
	Stop() error
	Abort() error
}

// TimeoutReporter is implemented by devices that are known to end a capture
// after an internal timeout while the user may still be speaking.
type TimeoutReporter interface {
	EndsOnTimeout() bool
}

// AvailabilityReporter is implemented by devices that can tell up front
// whether capture is possible at all (e.g. missing microphone or API key).
type AvailabilityReporter interface {
	Available() bool
}

type CaptureOptions struct {
	// Continuous keeps capturing across pauses instead of ending after the
	// first utterance.
	Continuous bool
	// InterimResults requests partial hypotheses in addition to final ones.
	InterimResults bool
	// Language is the BCP-47 tag speech should be recognised in.
	Language string

	// ResultCallback receives every hypothesised segment of the current
	// capture, in order. Each call replaces the previous one.
	ResultCallback func(segments []string)
	// EndCallback is called once when the capture ends for any reason.
	EndCallback func()
	// ErrorCallback is called when the capture fails. EndCallback is still
	// called afterwards.
	ErrorCallback func(error)

	EncodingInfo audio.EncodingInfo
}

type CaptureOption func(*CaptureOptions)

func WithContinuous(continuous bool) CaptureOption {
	return func(o *CaptureOptions) { o.Continuous = continuous }
}

func WithInterimResults(interimResults bool) CaptureOption {
	return func(o *CaptureOptions) { o.InterimResults = interimResults }
}

func WithLanguage(language string) CaptureOption {
	return func(o *CaptureOptions) {
		if language != "" {
			o.Language = language
		}
	}
}

func WithResultCallback(callback func(segments []string)) CaptureOption {
	return func(o *CaptureOptions) { o.ResultCallback = callback }
}

func WithEndCallback(callback func()) CaptureOption {
	return func(o *CaptureOptions) { o.EndCallback = callback }
}

func WithErrorCallback(callback func(error)) CaptureOption {
	return func(o *CaptureOptions) { o.ErrorCallback = callback }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) CaptureOption {
	return func(o *CaptureOptions) {
		if encodingInfo.IsZero() {
			return
		}
		o.EncodingInfo = encodingInfo
	}
}

// NewCaptureOptions applies opts over defaults. Unset callbacks are replaced
// with no-ops so devices can call them unconditionally.
func NewCaptureOptions(opts ...CaptureOption) CaptureOptions {
	options := CaptureOptions{
		Language:     "en-IN",
		EncodingInfo: audio.DefaultEncodingInfo(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.ResultCallback == nil {
		options.ResultCallback = func([]string) {}
	}
	if options.EndCallback == nil {
		options.EndCallback = func() {}
	}
	if options.ErrorCallback == nil {
		options.ErrorCallback = func(error) {}
	}
	return options
}
