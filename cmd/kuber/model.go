package main

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	orchestration "github.com/koscakluka/kuber-voice/core"
	"github.com/koscakluka/kuber-voice/core/events"
	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/muesli/reflow/wordwrap"
)

// conversation is the part of the orchestrator the UI drives.
type conversation interface {
	SubmitText(ctx context.Context, message string) bool
	ToggleListening(ctx context.Context) error
	CancelListening()
	TogglePlayback(ctx context.Context, turnID string) error
	History() []llms.Turn
	IsPending() bool
	IsListening() bool
	SpeechAvailable() bool
}

var _ conversation = (*orchestration.Orchestrator)(nil)

type eventMsg struct{ event events.Event }

type statusMsg struct{ err error }

type theme struct {
	header    lipgloss.Style
	user      lipgloss.Style
	model     lipgloss.Style
	speaking  lipgloss.Style
	status    lipgloss.Style
	errStatus lipgloss.Style
	help      lipgloss.Style
	input     lipgloss.Style
}

func newTheme() theme {
	saffron := lipgloss.Color("#ff9933")
	green := lipgloss.Color("#2e9e5b")
	muted := lipgloss.Color("#8a8f98")

	return theme{
		header:    lipgloss.NewStyle().Bold(true).Foreground(saffron).Padding(0, 1),
		user:      lipgloss.NewStyle().Foreground(green).Bold(true),
		model:     lipgloss.NewStyle().Foreground(saffron).Bold(true),
		speaking:  lipgloss.NewStyle().Foreground(saffron).Italic(true),
		status:    lipgloss.NewStyle().Foreground(muted),
		errStatus: lipgloss.NewStyle().Foreground(lipgloss.Color("#d7263d")).Bold(true),
		help:      lipgloss.NewStyle().Foreground(muted),
		input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1),
	}
}

type model struct {
	ctx          context.Context
	conversation conversation
	theme        theme

	input    textinput.Model
	timeline viewport.Model
	width    int

	turns       []llms.Turn
	pending     bool
	listening   bool
	speakingID  string
	status      string
	statusIsErr bool
}

func newModel(ctx context.Context, conversation conversation) model {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2000
	input.Placeholder = "Ask Kuber about investing..."
	input.Focus()

	m := model{
		ctx:          ctx,
		conversation: conversation,
		theme:        newTheme(),
		input:        input,
		timeline:     viewport.New(80, 20),
		width:        80,
		turns:        conversation.History(),
	}
	if !conversation.SpeechAvailable() {
		m.status = "voice input unavailable, type your message"
	}
	m.renderTimeline()
	return m
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.timeline.Width = msg.Width
		m.timeline.Height = max(3, msg.Height-6)
		m.input.Width = max(10, msg.Width-8)
		m.renderTimeline()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "enter":
			return m.submit()
		case "ctrl+r":
			return m, m.toggleListening()
		case "esc":
			if m.listening {
				m.conversation.CancelListening()
				m.input.Reset()
			}
			return m, nil
		case "ctrl+p":
			return m, m.togglePlayback()
		}

	case statusMsg:
		m.setError(msg.err)

	case eventMsg:
		m.handleEvent(msg.event)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.timeline, cmd = m.timeline.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m model) submit() (tea.Model, tea.Cmd) {
	if m.pending || m.listening {
		return m, nil
	}
	if m.conversation.SubmitText(m.ctx, m.input.Value()) {
		m.input.Reset()
	}
	return m, nil
}

func (m model) toggleListening() tea.Cmd {
	ctx, conversation := m.ctx, m.conversation
	return func() tea.Msg {
		return statusMsg{err: conversation.ToggleListening(ctx)}
	}
}

func (m model) togglePlayback() tea.Cmd {
	turnID := m.lastModelTurnID()
	if turnID == "" {
		return nil
	}
	ctx, conversation := m.ctx, m.conversation
	return func() tea.Msg {
		return statusMsg{err: conversation.TogglePlayback(ctx, turnID)}
	}
}

func (m *model) handleEvent(event events.Event) {
	switch e := event.(type) {
	case events.TurnAppended:
		m.turns = append(m.turns, e.Turn)
	case events.RequestPendingChanged:
		m.pending = e.Pending
		m.setStatus("")
		if e.Pending {
			m.setStatus("Kuber is thinking...")
		}
	case events.ListeningChanged:
		m.listening = e.Listening
		m.setStatus("")
		if e.Listening {
			m.setStatus("listening, ctrl+r to send, esc to cancel")
		}
	case events.TranscriptUpdated:
		m.input.SetValue(e.Transcript)
		m.input.CursorEnd()
	case events.SpeechEnded:
		m.input.SetValue(e.Draft)
		m.input.CursorEnd()
	case events.SpeechFailed:
		m.setError(e.Err)
	case events.SpeechUnavailable:
		m.setError(orchestration.ErrSpeechUnavailable)
	case events.AssistantPlaybackStarted:
		m.speakingID = e.TurnID
	case events.AssistantPlaybackEnded:
		if m.speakingID == e.TurnID {
			m.speakingID = ""
		}
	case events.AssistantPlaybackFailed:
		if m.speakingID == e.TurnID {
			m.speakingID = ""
		}
		m.setError(e.Err)
	}
	m.renderTimeline()
}

func (m *model) setStatus(status string) {
	m.status = status
	m.statusIsErr = false
}

func (m *model) setError(err error) {
	if err == nil {
		return
	}
	if errors.Is(err, orchestration.ErrRequestPending) {
		m.setStatus("wait for Kuber to answer first")
		return
	}
	m.status = err.Error()
	m.statusIsErr = true
}

func (m model) lastModelTurnID() string {
	for i := len(m.turns) - 1; i >= 0; i-- {
		if m.turns[i].Role == llms.RoleModel {
			return m.turns[i].ID
		}
	}
	return ""
}

func (m *model) renderTimeline() {
	width := max(20, m.width-4)

	var b strings.Builder
	for _, turn := range m.turns {
		label := m.theme.user.Render("You")
		if turn.Role == llms.RoleModel {
			label = m.theme.model.Render("Kuber")
			if turn.ID == m.speakingID {
				label += " " + m.theme.speaking.Render("(speaking)")
			}
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(wordwrap.String(turn.Text, width))
		b.WriteString("\n\n")
	}

	m.timeline.SetContent(b.String())
	m.timeline.GotoBottom()
}

func (m model) View() string {
	header := m.theme.header.Render("Kuber")

	status := m.theme.status.Render(m.status)
	if m.statusIsErr {
		status = m.theme.errStatus.Render(m.status)
	}

	help := m.theme.help.Render("enter send · ctrl+r mic · esc cancel mic · ctrl+p play/stop reply · ctrl+c quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.timeline.View(),
		m.theme.input.Render(m.input.View()),
		status,
		help,
	)
}
