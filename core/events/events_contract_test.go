package events

import (
	"errors"
	"testing"

	"github.com/koscakluka/kuber-voice/core/llms"
)

func TestConstructorsEmitExpectedKinds(t *testing.T) {
	testCases := []struct {
		name     string
		event    Event
		expected Kind
	}{
		{name: "turn appended", event: NewTurnAppended(llms.Turn{Role: llms.RoleUser, Text: "hi"}), expected: KindTurnAppended},
		{name: "request pending changed", event: NewRequestPendingChanged(true), expected: KindRequestPendingChanged},
		{name: "listening changed", event: NewListeningChanged(true), expected: KindListeningChanged},
		{name: "transcript updated", event: NewTranscriptUpdated("text"), expected: KindTranscriptUpdated},
		{name: "speech ended", event: NewSpeechEnded("draft"), expected: KindSpeechEnded},
		{name: "speech failed", event: NewSpeechFailed(errors.New("boom")), expected: KindSpeechFailed},
		{name: "speech unavailable", event: NewSpeechUnavailable(), expected: KindSpeechUnavailable},
		{name: "assistant playback started", event: NewAssistantPlaybackStarted("turn"), expected: KindAssistantPlaybackStarted},
		{name: "assistant playback ended", event: NewAssistantPlaybackEnded("turn", false), expected: KindAssistantPlaybackEnded},
		{name: "assistant playback failed", event: NewAssistantPlaybackFailed("turn", errors.New("boom")), expected: KindAssistantPlaybackFailed},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := testCase.event.Kind(); got != testCase.expected {
				t.Fatalf("expected kind %q, got %q", testCase.expected, got)
			}
			if testCase.event.Timestamp().IsZero() {
				t.Fatalf("expected timestamp to be set")
			}
		})
	}
}

func TestTurnAppendedCarriesTurnCopy(t *testing.T) {
	turn := llms.Turn{ID: "1", Role: llms.RoleModel, Text: "namaste", LanguageCode: "hi-IN"}
	event := NewTurnAppended(turn)
	turn.Text = "changed"

	if event.Turn.Text != "namaste" {
		t.Fatalf("expected event to keep its own copy of the turn, got %q", event.Turn.Text)
	}
}
