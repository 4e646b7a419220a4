package speech

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/koscakluka/kuber-voice/core/speechtotext"
)

func TestManagerRestartCarriesTranscriptAcrossDeviceTimeout(t *testing.T) {
	device := &deviceStub{}
	manager := New(device, WithMode(RestartOnTimeout))

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("expected start to succeed, got %v", err)
	}

	device.emit("inves")
	device.emit("invest men")
	device.end()
	device.emit("t in sip")

	if got := device.captureCount(); got != 2 {
		t.Fatalf("expected device to be restarted once, got %d captures", got)
	}
	if got := manager.Status(); got != StatusListening {
		t.Fatalf("expected session to stay listening across restart, got %s", got)
	}

	transcript, ok := manager.Stop()
	if !ok {
		t.Fatalf("expected stop to deliver a transcript")
	}
	if transcript != "invest men t in sip" {
		t.Fatalf("expected transcript %q, got %q", "invest men t in sip", transcript)
	}
}

func TestManagerRestartConcatenatesEveryHypothesis(t *testing.T) {
	device := &deviceStub{}
	var ended []string
	manager := New(device,
		WithMode(RestartOnTimeout),
		WithEndedCallback(func(transcript string) { ended = append(ended, transcript) }),
	)

	_ = manager.Start(context.Background())
	hypotheses := []string{"one", "two three", "four", "five"}
	for _, hypothesis := range hypotheses {
		device.emit(hypothesis)
		device.end()
	}

	if got := device.captureCount(); got != len(hypotheses)+1 {
		t.Fatalf("expected %d captures, got %d", len(hypotheses)+1, got)
	}
	if len(ended) != 0 {
		t.Fatalf("expected no completion callback during restarts, got %v", ended)
	}

	transcript, _ := manager.Stop()
	if transcript != "one two three four five" {
		t.Fatalf("expected single-space joined transcript, got %q", transcript)
	}
}

func TestManagerRestartKeepsExistingTrailingSpace(t *testing.T) {
	device := &deviceStub{}
	manager := New(device, WithMode(RestartOnTimeout))

	_ = manager.Start(context.Background())
	device.emit("hello ")
	device.end()

	if got := manager.LiveTranscript(); got != "hello " {
		t.Fatalf("expected frozen transcript %q, got %q", "hello ", got)
	}

	device.emit("world")
	transcript, ok := manager.Stop()
	if !ok {
		t.Fatalf("expected stop to deliver a transcript")
	}
	if transcript != "hello world" {
		t.Fatalf("expected single space between hypotheses, got %q", transcript)
	}
}

func TestManagerDoesNotRestartAfterStop(t *testing.T) {
	device := &deviceStub{}
	manager := New(device, WithMode(RestartOnTimeout))

	_ = manager.Start(context.Background())
	device.emit("hello")
	staleEnd := device.lastOptions().EndCallback

	if _, ok := manager.Stop(); !ok {
		t.Fatalf("expected stop to deliver transcript")
	}
	staleEnd()

	if got := device.captureCount(); got != 1 {
		t.Fatalf("expected no restart after stop, got %d captures", got)
	}
	if device.stops != 1 {
		t.Fatalf("expected device to be stopped once, got %d", device.stops)
	}
	if got := manager.Status(); got != StatusIdle {
		t.Fatalf("expected idle after stop, got %s", got)
	}
}

func TestManagerCancelDiscardsTranscriptAndNeverRestarts(t *testing.T) {
	device := &deviceStub{}
	var transcripts []string
	manager := New(device,
		WithMode(RestartOnTimeout),
		WithTranscriptCallback(func(transcript string) { transcripts = append(transcripts, transcript) }),
	)

	_ = manager.Start(context.Background())
	device.emit("do not send this")
	staleEnd := device.lastOptions().EndCallback

	manager.Cancel()
	staleEnd()

	if device.aborts != 1 {
		t.Fatalf("expected device to be aborted once, got %d", device.aborts)
	}
	if got := device.captureCount(); got != 1 {
		t.Fatalf("expected no restart after cancel, got %d captures", got)
	}
	if got := manager.LiveTranscript(); got != "" {
		t.Fatalf("expected transcript to be discarded, got %q", got)
	}
	if last := transcripts[len(transcripts)-1]; last != "" {
		t.Fatalf("expected cancel to clear the live transcript, got %q", last)
	}
	if _, ok := manager.Stop(); ok {
		t.Fatalf("expected stop after cancel to deliver nothing")
	}
}

func TestManagerTerminateModeEndsSession(t *testing.T) {
	device := &deviceStub{}
	var ended []string
	var listening []bool
	manager := New(device,
		WithMode(TerminateOnTimeout),
		WithEndedCallback(func(transcript string) { ended = append(ended, transcript) }),
		WithListeningCallback(func(isListening bool) { listening = append(listening, isListening) }),
	)

	_ = manager.Start(context.Background())
	device.emit("what is ", "a mutual fund")
	device.end()

	if got := device.captureCount(); got != 1 {
		t.Fatalf("expected no restart in terminate mode, got %d captures", got)
	}
	if got := manager.Status(); got != StatusIdle {
		t.Fatalf("expected idle after device end, got %s", got)
	}
	if len(ended) != 1 || ended[0] != "what is a mutual fund" {
		t.Fatalf("expected ended callback with transcript, got %v", ended)
	}
	if len(listening) != 2 || !listening[0] || listening[1] {
		t.Fatalf("expected listening states [true false], got %v", listening)
	}
	if got := manager.LiveTranscript(); got != "what is a mutual fund" {
		t.Fatalf("expected transcript to stay readable as a draft, got %q", got)
	}
	if _, ok := manager.Stop(); ok {
		t.Fatalf("expected stop on ended session to be a no-op")
	}
}

func TestManagerPartialResultsReplaceHypothesis(t *testing.T) {
	device := &deviceStub{}
	var transcripts []string
	manager := New(device, WithTranscriptCallback(func(transcript string) {
		transcripts = append(transcripts, transcript)
	}))

	_ = manager.Start(context.Background())
	device.emit("invest")
	device.emit("in vest")
	device.emit("invest", " in gold")

	want := []string{"", "invest", "in vest", "invest in gold"}
	if len(transcripts) != len(want) {
		t.Fatalf("expected transcripts %q, got %q", want, transcripts)
	}
	for i := range want {
		if transcripts[i] != want[i] {
			t.Fatalf("expected transcripts %q, got %q", want, transcripts)
		}
	}
}

func TestManagerIgnoresResultsFromEndedCapture(t *testing.T) {
	device := &deviceStub{}
	manager := New(device, WithMode(RestartOnTimeout))

	_ = manager.Start(context.Background())
	device.emit("first")
	staleResult := device.lastOptions().ResultCallback
	device.end()

	staleResult([]string{"late duplicate of first"})
	device.emit("second")

	if got := manager.LiveTranscript(); got != "first second" {
		t.Fatalf("expected stale results to be ignored, got %q", got)
	}
}

func TestManagerStartWhileListeningIsNoop(t *testing.T) {
	device := &deviceStub{}
	manager := New(device)

	_ = manager.Start(context.Background())
	device.emit("keep me")
	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("expected second start to be a silent no-op, got %v", err)
	}

	if got := device.captureCount(); got != 1 {
		t.Fatalf("expected a single capture, got %d", got)
	}
	if got := manager.LiveTranscript(); got != "keep me" {
		t.Fatalf("expected transcript to survive second start, got %q", got)
	}
}

func TestManagerStopWithWhitespaceTranscriptDeliversNothing(t *testing.T) {
	device := &deviceStub{}
	manager := New(device)

	_ = manager.Start(context.Background())
	device.emit("   ")

	if transcript, ok := manager.Stop(); ok || transcript != "" {
		t.Fatalf("expected empty stop result, got %q (ok=%t)", transcript, ok)
	}
}

func TestManagerContractViolationsAreNoops(t *testing.T) {
	device := &deviceStub{}
	manager := New(device)

	if _, ok := manager.Stop(); ok {
		t.Fatalf("expected stop without session to deliver nothing")
	}
	manager.Cancel()

	if device.stops != 0 || device.aborts != 0 {
		t.Fatalf("expected device untouched, got %d stops and %d aborts", device.stops, device.aborts)
	}
}

func TestManagerUnavailableDevice(t *testing.T) {
	withoutDevice := New(nil)
	if withoutDevice.Available() {
		t.Fatalf("expected manager without device to be unavailable")
	}
	if err := withoutDevice.Start(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	unavailable := New(&reportingDeviceStub{available: false})
	if unavailable.Available() {
		t.Fatalf("expected device reporting unavailability to be unavailable")
	}
}

func TestManagerDeviceErrorResetsSession(t *testing.T) {
	device := &deviceStub{}
	var errs []error
	manager := New(device,
		WithMode(RestartOnTimeout),
		WithErrorCallback(func(err error) { errs = append(errs, err) }),
	)

	_ = manager.Start(context.Background())
	device.emit("partial")
	device.lastOptions().ErrorCallback(errors.New("socket closed"))
	device.end()

	if len(errs) != 1 {
		t.Fatalf("expected one error callback, got %d", len(errs))
	}
	if got := manager.Status(); got != StatusIdle {
		t.Fatalf("expected idle after device error, got %s", got)
	}
	if got := device.captureCount(); got != 1 {
		t.Fatalf("expected no restart after device error, got %d captures", got)
	}
	if device.aborts != 1 {
		t.Fatalf("expected device to be aborted after error, got %d", device.aborts)
	}

	if err := manager.Start(context.Background()); err != nil {
		t.Fatalf("expected manager to be reusable after error, got %v", err)
	}
}

func TestManagerStartFailureResetsSession(t *testing.T) {
	device := &deviceStub{captureErr: errors.New("no microphone")}
	manager := New(device)

	if err := manager.Start(context.Background()); err == nil {
		t.Fatalf("expected start to fail")
	}
	if got := manager.Status(); got != StatusIdle {
		t.Fatalf("expected idle after failed start, got %s", got)
	}
}

func TestManagerRestartLimitEndsSilentSession(t *testing.T) {
	device := &deviceStub{}
	ended := 0
	manager := New(device,
		WithMode(RestartOnTimeout),
		WithRestartLimit(2),
		WithEndedCallback(func(string) { ended++ }),
	)

	_ = manager.Start(context.Background())
	device.end()
	device.end()
	device.end()

	if got := device.captureCount(); got != 3 {
		t.Fatalf("expected 2 restarts before giving up, got %d captures", got)
	}
	if ended != 1 {
		t.Fatalf("expected session to end once, got %d", ended)
	}
	if got := manager.Status(); got != StatusIdle {
		t.Fatalf("expected idle after restart limit, got %s", got)
	}
}

func TestManagerCallsEveryRegisteredCallback(t *testing.T) {
	device := &deviceStub{}
	var calls []string
	manager := New(device,
		WithTranscriptCallback(func(transcript string) { calls = append(calls, "first:"+transcript) }),
		WithTranscriptCallback(func(transcript string) { calls = append(calls, "second:"+transcript) }),
		WithTranscriptCallback(nil),
	)

	_ = manager.Start(context.Background())
	device.emit("gold")

	if len(calls) != 2 || calls[0] != "first:gold" || calls[1] != "second:gold" {
		t.Fatalf("expected both callbacks in registration order, got %v", calls)
	}
}

func TestDetectMode(t *testing.T) {
	if got := DetectMode(&deviceStub{}); got != TerminateOnTimeout {
		t.Fatalf("expected terminate mode for plain device, got %s", got)
	}
	if got := DetectMode(&reportingDeviceStub{available: true, endsOnTimeout: true}); got != RestartOnTimeout {
		t.Fatalf("expected restart mode for timing-out device, got %s", got)
	}

	manager := New(&reportingDeviceStub{available: true, endsOnTimeout: true}, WithMode(TerminateOnTimeout))
	if manager.Mode() != TerminateOnTimeout {
		t.Fatalf("expected explicit mode to win over detection")
	}
}

func TestParseMode(t *testing.T) {
	if mode, ok := ParseMode("restart"); !ok || mode != RestartOnTimeout {
		t.Fatalf("expected restart mode, got %s (ok=%t)", mode, ok)
	}
	if mode, ok := ParseMode("terminate_on_timeout"); !ok || mode != TerminateOnTimeout {
		t.Fatalf("expected terminate mode, got %s (ok=%t)", mode, ok)
	}
	if _, ok := ParseMode("auto"); ok {
		t.Fatalf("expected auto to defer to detection")
	}
}

type deviceStub struct {
	mu         sync.Mutex
	captures   []speechtotext.CaptureOptions
	stops      int
	aborts     int
	captureErr error
}

func (d *deviceStub) Capture(_ context.Context, opts ...speechtotext.CaptureOption) error {
	if d.captureErr != nil {
		return d.captureErr
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.captures = append(d.captures, speechtotext.NewCaptureOptions(opts...))
	return nil
}

func (d *deviceStub) Stop() error  { d.stops++; return nil }
func (d *deviceStub) Abort() error { d.aborts++; return nil }

func (d *deviceStub) captureCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.captures)
}

func (d *deviceStub) lastOptions() speechtotext.CaptureOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.captures[len(d.captures)-1]
}

func (d *deviceStub) emit(segments ...string) { d.lastOptions().ResultCallback(segments) }
func (d *deviceStub) end()                    { d.lastOptions().EndCallback() }

type reportingDeviceStub struct {
	deviceStub
	available     bool
	endsOnTimeout bool
}

func (d *reportingDeviceStub) Available() bool     { return d.available }
func (d *reportingDeviceStub) EndsOnTimeout() bool { return d.endsOnTimeout }
