package orchestration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/koscakluka/kuber-voice/core/envelope"
	"github.com/koscakluka/kuber-voice/core/events"
	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/koscakluka/kuber-voice/core/speech"
	"github.com/koscakluka/kuber-voice/core/speechtotext"
	"github.com/koscakluka/kuber-voice/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrRequestPending    = errors.New("a request is already pending")
	ErrSpeechUnavailable = errors.New("speech input is not available")
	ErrTurnNotFound      = errors.New("model turn not found")
	ErrNoBackend         = errors.New("no backend configured")
)

// Orchestrator owns the conversation: it accepts typed and spoken messages,
// keeps at most one backend request in flight and speaks model replies.
type Orchestrator struct {
	backend         Backend
	playback        texttospeech.SpeechPlayback
	speechDevice    speechtotext.Device
	speechOptions   []speech.ManagerOption
	defaultLanguage string
	emit            eventEmitter

	speech       *speech.Manager
	player       *speechPlayer
	conversation conversation

	mu      sync.Mutex
	pending bool
	draft   string

	inFlight  sync.WaitGroup
	closeOnce sync.Once
}

func NewOrchestrator(opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		defaultLanguage: envelope.DefaultLanguageCode,
		emit:            noopEventEmitter,
	}
	for _, opt := range opts {
		opt(o)
	}

	speechOptions := append([]speech.ManagerOption{speech.WithLanguage(o.defaultLanguage)}, o.speechOptions...)
	speechOptions = append(speechOptions,
		speech.WithTranscriptCallback(o.onTranscript),
		speech.WithListeningCallback(func(listening bool) { o.emit(events.NewListeningChanged(listening)) }),
		speech.WithEndedCallback(o.onSpeechEnded),
		speech.WithErrorCallback(func(err error) { o.emit(events.NewSpeechFailed(err)) }),
	)
	o.speech = speech.New(o.speechDevice, speechOptions...)
	o.player = newSpeechPlayer(o.playback, o.defaultLanguage, func(event events.Event) { o.emit(event) })

	return o
}

// Close cancels voice input and playback and waits for the in-flight turn.
func (o *Orchestrator) Close() {
	o.closeOnce.Do(func() {
		o.speech.Cancel()
		o.player.Stop()
		o.inFlight.Wait()
	})
}

// SubmitText sends a typed message. It reports false without side effects
// when message is blank or a request is already pending. An active voice
// session is stopped first and its transcript discarded.
func (o *Orchestrator) SubmitText(ctx context.Context, message string) bool {
	if strings.TrimSpace(message) == "" || o.IsPending() {
		return false
	}

	if o.speech.IsListening() {
		o.speech.Stop()
	}
	return o.submit(ctx, message)
}

// SubmitFromSpeech stops the voice session and sends its transcript. It
// reports false when nothing was said.
func (o *Orchestrator) SubmitFromSpeech(ctx context.Context) bool {
	transcript, ok := o.speech.Stop()
	if !ok {
		o.setDraft("")
		return false
	}
	return o.submit(ctx, transcript)
}

// ToggleListening is the microphone gesture: it submits an active session or
// starts a new one.
func (o *Orchestrator) ToggleListening(ctx context.Context) error {
	if !o.speech.Available() {
		o.emit(events.NewSpeechUnavailable())
		return ErrSpeechUnavailable
	}

	if o.speech.IsListening() {
		o.SubmitFromSpeech(ctx)
		return nil
	}
	return o.StartListening(ctx)
}

// StartListening starts a voice session. It is refused while a request is
// pending.
func (o *Orchestrator) StartListening(ctx context.Context) error {
	if !o.speech.Available() {
		o.emit(events.NewSpeechUnavailable())
		return ErrSpeechUnavailable
	}
	if o.IsPending() {
		return ErrRequestPending
	}

	if err := o.speech.Start(ctx); err != nil {
		err = fmt.Errorf("failed to start listening: %w", err)
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// CancelListening aborts the voice session without sending anything.
func (o *Orchestrator) CancelListening() {
	o.speech.Cancel()
	o.setDraft("")
}

// TogglePlayback stops playback if anything is being spoken, otherwise it
// speaks the model turn identified by turnID.
func (o *Orchestrator) TogglePlayback(ctx context.Context, turnID string) error {
	if o.player.IsSpeaking() {
		o.player.Stop()
		return nil
	}

	turn, ok := o.conversation.Turn(turnID)
	if !ok || turn.Role != llms.RoleModel {
		return fmt.Errorf("failed to toggle playback of %q: %w", turnID, ErrTurnNotFound)
	}
	return o.player.Play(ctx, turn)
}

func (o *Orchestrator) StopSpeaking()    { o.player.Stop() }
func (o *Orchestrator) IsSpeaking() bool { return o.player.IsSpeaking() }

func (o *Orchestrator) History() []llms.Turn  { return o.conversation.History() }
func (o *Orchestrator) IsListening() bool     { return o.speech.IsListening() }
func (o *Orchestrator) SpeechAvailable() bool { return o.speech.Available() }

func (o *Orchestrator) IsPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending
}

// Draft is the text the input surface should show: the live transcript while
// listening, or the transcript left behind by a session the device ended.
func (o *Orchestrator) Draft() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft
}

// Wait blocks until the in-flight turn, if any, has its model reply.
func (o *Orchestrator) Wait() { o.inFlight.Wait() }

func (o *Orchestrator) submit(ctx context.Context, message string) bool {
	o.mu.Lock()
	if o.pending {
		o.mu.Unlock()
		return false
	}
	o.pending = true
	o.draft = ""
	history := llms.ToHistory(o.conversation.History())
	turn := o.conversation.Append(llms.RoleUser, message, "")
	o.inFlight.Add(1)
	o.mu.Unlock()

	turnCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("role", string(llms.RoleUser))))
	o.emit(events.NewTurnAppended(turn))
	o.emit(events.NewRequestPendingChanged(true))

	go func() {
		defer o.inFlight.Done()
		o.respond(ctx, history, message)
	}()
	return true
}

// respond always appends exactly one model turn, falling back to a local
// reply when the backend fails or its output cannot be recovered.
func (o *Orchestrator) respond(ctx context.Context, history []llms.HistoryEntry, message string) {
	ctx, span := tracer.Start(ctx, "respond to message")
	defer span.End()

	reply := envelope.BackendFailure()
	recovered := false
	raw, err := generateReply(ctx, o.backend, history, message)
	if err == nil {
		reply, recovered = envelope.Recover(raw)
	} else {
		err = fmt.Errorf("failed to generate reply: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("backend request failed", "error", err)
		backendFailureCounter.Add(ctx, 1)
	}

	// Apologies are spoken in the configured language.
	if !recovered {
		reply.LanguageCode = o.defaultLanguage
	}

	o.mu.Lock()
	turn := o.conversation.Append(llms.RoleModel, reply.Reply, reply.LanguageCode)
	o.pending = false
	o.mu.Unlock()

	turnCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("role", string(llms.RoleModel))))
	o.emit(events.NewTurnAppended(turn))
	o.emit(events.NewRequestPendingChanged(false))

	if err := o.player.Play(context.WithoutCancel(ctx), turn); err != nil {
		span.RecordError(err)
	}
}

func (o *Orchestrator) onTranscript(transcript string) {
	o.setDraft(transcript)
	o.emit(events.NewTranscriptUpdated(transcript))
}

func (o *Orchestrator) onSpeechEnded(transcript string) {
	draft := strings.TrimSpace(transcript)
	o.setDraft(draft)
	o.emit(events.NewSpeechEnded(draft))
}

func (o *Orchestrator) setDraft(draft string) {
	o.mu.Lock()
	o.draft = draft
	o.mu.Unlock()
}
