package audio

import "context"

// Input is a microphone that delivers raw mono audio in EncodingInfo's
// format between StartCapture and StopCapture.
type Input interface {
	StartCapture(ctx context.Context, onAudio func(audio []byte)) error
	StopCapture() error
	EncodingInfo() EncodingInfo
}
