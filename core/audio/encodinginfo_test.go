package audio

import (
	"testing"
	"time"
)

func TestChunkSize(t *testing.T) {
	info := DefaultEncodingInfo()
	if got := info.Samples(100 * time.Millisecond); got != 1600 {
		t.Fatalf("expected 1600 samples, got %d", got)
	}
	if got := info.ChunkSize(100 * time.Millisecond); got != 3200 {
		t.Fatalf("expected 3200 bytes, got %d", got)
	}

	mulaw := EncodingInfo{SampleRate: 8000, Format: EncodingMulaw}
	if got := mulaw.ChunkSize(time.Second); got != 8000 {
		t.Fatalf("expected 8000 bytes, got %d", got)
	}

	unknown := EncodingInfo{SampleRate: 8000, Format: "opus"}
	if got := unknown.ChunkSize(time.Second); got != 0 {
		t.Fatalf("expected 0 bytes for unknown format, got %d", got)
	}
}

func TestIsZero(t *testing.T) {
	if !(EncodingInfo{}).IsZero() {
		t.Fatalf("expected empty info to be zero")
	}
	if (DefaultEncodingInfo()).IsZero() {
		t.Fatalf("expected default info not to be zero")
	}
}
