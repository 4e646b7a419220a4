package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/kuber-voice/core"
	"github.com/koscakluka/kuber-voice/core/events"
	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/koscakluka/kuber-voice/core/speech"
	"github.com/koscakluka/kuber-voice/internal/config"
)

type conversationStub struct {
	submitted      []string
	toggles        int
	cancels        int
	playbackTurns  []string
	toggleErr      error
	speechEnabled  bool
	history        []llms.Turn
	submitAccepted bool
}

func (c *conversationStub) SubmitText(ctx context.Context, message string) bool {
	c.submitted = append(c.submitted, message)
	return c.submitAccepted
}

func (c *conversationStub) ToggleListening(ctx context.Context) error {
	c.toggles++
	return c.toggleErr
}

func (c *conversationStub) CancelListening() { c.cancels++ }

func (c *conversationStub) TogglePlayback(ctx context.Context, turnID string) error {
	c.playbackTurns = append(c.playbackTurns, turnID)
	return nil
}

func (c *conversationStub) History() []llms.Turn  { return c.history }
func (c *conversationStub) IsPending() bool       { return false }
func (c *conversationStub) IsListening() bool     { return false }
func (c *conversationStub) SpeechAvailable() bool { return c.speechEnabled }

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	updated, ok := next.(model)
	if !ok {
		t.Fatalf("expected model, got %T", next)
	}
	return updated, cmd
}

func TestEnterSubmitsAndClearsInput(t *testing.T) {
	stub := &conversationStub{submitAccepted: true, speechEnabled: true}
	m := newModel(context.Background(), stub)
	m.input.SetValue("What is SIP?")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(stub.submitted) != 1 || stub.submitted[0] != "What is SIP?" {
		t.Fatalf("expected submission, got %v", stub.submitted)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input to be cleared, got %q", m.input.Value())
	}
}

func TestEnterIgnoredWhilePendingOrListening(t *testing.T) {
	stub := &conversationStub{submitAccepted: true}
	m := newModel(context.Background(), stub)
	m.input.SetValue("hello")

	m, _ = update(t, m, eventMsg{events.NewRequestPendingChanged(true)})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, eventMsg{events.NewRequestPendingChanged(false)})
	m, _ = update(t, m, eventMsg{events.NewListeningChanged(true)})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(stub.submitted) != 0 {
		t.Fatalf("expected no submissions, got %v", stub.submitted)
	}
}

func TestRejectedSubmitKeepsInput(t *testing.T) {
	stub := &conversationStub{}
	m := newModel(context.Background(), stub)
	m.input.SetValue("   ")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.input.Value() != "   " {
		t.Fatalf("expected input to be kept, got %q", m.input.Value())
	}
}

func TestMicToggleRunsAsCommand(t *testing.T) {
	stub := &conversationStub{toggleErr: orchestration.ErrSpeechUnavailable}
	m := newModel(context.Background(), stub)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if cmd == nil {
		t.Fatalf("expected command")
	}
	if stub.toggles != 0 {
		t.Fatalf("expected toggle to be deferred to the command")
	}

	m, _ = update(t, m, cmd())
	if stub.toggles != 1 {
		t.Fatalf("expected 1 toggle, got %d", stub.toggles)
	}
	if !m.statusIsErr || !strings.Contains(m.status, "not available") {
		t.Fatalf("expected unavailable error status, got %q", m.status)
	}
}

func TestTranscriptEventsFillInput(t *testing.T) {
	m := newModel(context.Background(), &conversationStub{speechEnabled: true})

	m, _ = update(t, m, eventMsg{events.NewTranscriptUpdated("invest men")})
	if m.input.Value() != "invest men" {
		t.Fatalf("expected live transcript, got %q", m.input.Value())
	}

	m, _ = update(t, m, eventMsg{events.NewSpeechEnded("investment in sip")})
	if m.input.Value() != "investment in sip" {
		t.Fatalf("expected draft, got %q", m.input.Value())
	}
}

func TestEscCancelsListening(t *testing.T) {
	stub := &conversationStub{speechEnabled: true}
	m := newModel(context.Background(), stub)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if stub.cancels != 0 {
		t.Fatalf("expected no cancel while idle")
	}

	m, _ = update(t, m, eventMsg{events.NewListeningChanged(true)})
	m, _ = update(t, m, eventMsg{events.NewTranscriptUpdated("hello")})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if stub.cancels != 1 {
		t.Fatalf("expected 1 cancel, got %d", stub.cancels)
	}
	if m.input.Value() != "" {
		t.Fatalf("expected input to be cleared, got %q", m.input.Value())
	}
}

func TestPlaybackToggleTargetsLastModelTurn(t *testing.T) {
	stub := &conversationStub{}
	m := newModel(context.Background(), stub)

	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP}); cmd != nil {
		t.Fatalf("expected no command without a model turn")
	}

	m, _ = update(t, m, eventMsg{events.NewTurnAppended(llms.Turn{ID: "u1", Role: llms.RoleUser, Text: "hi"})})
	m, _ = update(t, m, eventMsg{events.NewTurnAppended(llms.Turn{ID: "m1", Role: llms.RoleModel, Text: "Namaste", LanguageCode: "hi-IN"})})
	m, _ = update(t, m, eventMsg{events.NewTurnAppended(llms.Turn{ID: "u2", Role: llms.RoleUser, Text: "again"})})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if cmd == nil {
		t.Fatalf("expected command")
	}
	cmd()
	if len(stub.playbackTurns) != 1 || stub.playbackTurns[0] != "m1" {
		t.Fatalf("expected playback of m1, got %v", stub.playbackTurns)
	}
}

func TestTimelineShowsTurnsAndSpeaking(t *testing.T) {
	m := newModel(context.Background(), &conversationStub{})

	m, _ = update(t, m, eventMsg{events.NewTurnAppended(llms.Turn{ID: "m1", Role: llms.RoleModel, Text: "Namaste"})})
	m, _ = update(t, m, eventMsg{events.NewAssistantPlaybackStarted("m1")})
	view := m.View()
	if !strings.Contains(view, "Namaste") || !strings.Contains(view, "speaking") {
		t.Fatalf("expected speaking reply in view, got %q", view)
	}

	m, _ = update(t, m, eventMsg{events.NewAssistantPlaybackEnded("m1", false)})
	if strings.Contains(m.View(), "(speaking)") {
		t.Fatalf("expected speaking marker to clear")
	}
}

func TestPendingStatusIsNotAnError(t *testing.T) {
	m := newModel(context.Background(), &conversationStub{})
	m, _ = update(t, m, statusMsg{err: fmt.Errorf("toggle: %w", orchestration.ErrRequestPending)})
	if m.statusIsErr {
		t.Fatalf("expected informational status, got error %q", m.status)
	}
}

func TestSpeechOptions(t *testing.T) {
	manager := speech.New(nil, speechOptions(config.SpeechConfig{Mode: config.SpeechModeRestart})...)
	if manager.Mode() != speech.RestartOnTimeout {
		t.Fatalf("expected restart mode, got %s", manager.Mode())
	}

	manager = speech.New(nil, speechOptions(config.SpeechConfig{Mode: config.SpeechModeAuto})...)
	if manager.Mode() != speech.TerminateOnTimeout {
		t.Fatalf("expected detected terminate mode for nil device, got %s", manager.Mode())
	}
}
