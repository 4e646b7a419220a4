package audio

import "time"

const DefaultSampleRate = 16000

// Format names a PCM sample encoding.
type Format string

const (
	EncodingMulaw    Format = "mulaw"
	EncodingALaw     Format = "alaw"
	EncodingLinear16 Format = "linear16"
)

func (f Format) Name() string { return string(f) }

// BytesPerSample is 0 for unknown formats.
func (f Format) BytesPerSample() int {
	switch f {
	case EncodingMulaw, EncodingALaw:
		return 1
	case EncodingLinear16:
		return 2
	}
	return 0
}

// EncodingInfo describes the mono stream an [Input] delivers.
type EncodingInfo struct {
	SampleRate int
	Format     Format
}

func DefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: DefaultSampleRate, Format: EncodingLinear16}
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format == ""
}

// Samples returns how many samples cover d.
func (e EncodingInfo) Samples(d time.Duration) int {
	return int(int64(e.SampleRate) * int64(d) / int64(time.Second))
}

// ChunkSize returns how many bytes cover d.
func (e EncodingInfo) ChunkSize(d time.Duration) int {
	return e.Samples(d) * e.Format.BytesPerSample()
}
