package deepgram

import (
	"errors"
	"fmt"

	"github.com/koscakluka/kuber-voice/core/audio"
)

var ErrUnsupportedEncoding = errors.New("unsupported encoding")

var supportedSampleRates = map[int]bool{8000: true, 16000: true, 24000: true, 32000: true, 48000: true}

// checkEncoding reports whether the live endpoint accepts raw audio in
// encoding. Format names match the endpoint's encoding parameter.
func checkEncoding(encoding audio.EncodingInfo) error {
	if !supportedSampleRates[encoding.SampleRate] {
		return fmt.Errorf("%w: sample rate %d", ErrUnsupportedEncoding, encoding.SampleRate)
	}

	switch encoding.Format {
	case audio.EncodingLinear16:
		return nil
	case audio.EncodingALaw, audio.EncodingMulaw:
		if encoding.SampleRate != 8000 {
			return fmt.Errorf("%w: %s requires 8000 Hz", ErrUnsupportedEncoding, encoding.Format)
		}
		return nil
	default:
		return fmt.Errorf("%w: format %q", ErrUnsupportedEncoding, encoding.Format.Name())
	}
}
