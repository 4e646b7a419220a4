package orchestration

import (
	"context"
	"sync"

	"github.com/koscakluka/kuber-voice/core/events"
	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/koscakluka/kuber-voice/core/speechtotext"
	"github.com/koscakluka/kuber-voice/core/texttospeech"
)

type backendCall struct {
	history []llms.HistoryEntry
	message string
}

type backendStub struct {
	mu    sync.Mutex
	calls []backendCall
	reply func(message string) (string, error)
}

func newBackendStub(reply func(message string) (string, error)) *backendStub {
	return &backendStub{reply: reply}
}

func replyWith(raw string) *backendStub {
	return newBackendStub(func(string) (string, error) { return raw, nil })
}

func (b *backendStub) GenerateReply(_ context.Context, history []llms.HistoryEntry, message string) (string, error) {
	b.mu.Lock()
	b.calls = append(b.calls, backendCall{history: history, message: message})
	b.mu.Unlock()

	return b.reply(message)
}

func (b *backendStub) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func (b *backendStub) call(i int) backendCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[i]
}

type utterance struct {
	text    string
	options texttospeech.SpeakOptions
}

type playbackStub struct {
	mu         sync.Mutex
	utterances []utterance
	cancels    int
	speakErr   error
}

func (p *playbackStub) Speak(_ context.Context, text string, opts ...texttospeech.SpeakOption) error {
	if p.speakErr != nil {
		return p.speakErr
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.utterances = append(p.utterances, utterance{text: text, options: texttospeech.NewSpeakOptions(opts...)})
	return nil
}

func (p *playbackStub) Cancel() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancels++
	return nil
}

func (p *playbackStub) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.utterances)
}

func (p *playbackStub) utterance(i int) utterance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.utterances[i]
}

func (p *playbackStub) last() utterance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.utterances[len(p.utterances)-1]
}

func (p *playbackStub) cancelCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancels
}

type deviceStub struct {
	mu            sync.Mutex
	captures      []speechtotext.CaptureOptions
	stops         int
	aborts        int
	endsOnTimeout bool
}

func (d *deviceStub) Capture(_ context.Context, opts ...speechtotext.CaptureOption) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.captures = append(d.captures, speechtotext.NewCaptureOptions(opts...))
	return nil
}

func (d *deviceStub) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stops++
	return nil
}

func (d *deviceStub) Abort() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.aborts++
	return nil
}

func (d *deviceStub) EndsOnTimeout() bool { return d.endsOnTimeout }

func (d *deviceStub) lastOptions() speechtotext.CaptureOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.captures[len(d.captures)-1]
}

func (d *deviceStub) emit(segments ...string) { d.lastOptions().ResultCallback(segments) }
func (d *deviceStub) end()                    { d.lastOptions().EndCallback() }

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) count(kind events.Kind) int {
	count := 0
	for _, k := range r.kinds() {
		if k == kind {
			count++
		}
	}
	return count
}
