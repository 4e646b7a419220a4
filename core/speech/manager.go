// Package speech owns the single live speech capture session and hides the
// differences between capture devices behind a start/stop/cancel contract.
//
// Devices end captures for two indistinguishable reasons: because they were
// asked to, or because they gave up on their own. The [Manager] tracks what
// it last requested and, for devices that end on their own, either restarts
// them transparently ([RestartOnTimeout]) or ends the session
// ([TerminateOnTimeout]).
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/koscakluka/kuber-voice/core/speechtotext"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var ErrUnavailable = errors.New("speech capture is not available")

type Manager struct {
	device       speechtotext.Device
	available    bool
	mode         Mode
	modeForced   bool
	language     string
	restartLimit int

	mu     sync.Mutex
	status Status
	// hypothesis is the device's full hypothesis since its last (re)start.
	hypothesis string
	// finalizedPrefix is the transcript carried over from captures the device
	// ended on its own.
	finalizedPrefix string
	// epoch identifies the current device capture. Callbacks from any other
	// capture are stale and ignored.
	epoch uint64
	// emptyRestarts counts consecutive restarts without a recognition result.
	emptyRestarts int
	captureCtx    context.Context

	onTranscript func(string)
	onListening  func(bool)
	onEnded      func(string)
	onError      func(error)
}

func New(device speechtotext.Device, opts ...ManagerOption) *Manager {
	m := &Manager{
		device:       device,
		language:     "en-IN",
		onTranscript: func(string) {},
		onListening:  func(bool) {},
		onEnded:      func(string) {},
		onError:      func(error) {},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.available = isAvailable(device)
	if !m.modeForced && device != nil {
		m.mode = DetectMode(device)
	}

	return m
}

func isAvailable(device speechtotext.Device) bool {
	if device == nil {
		return false
	}
	if reporter, ok := device.(speechtotext.AvailabilityReporter); ok {
		return reporter.Available()
	}
	return true
}

// Available reports whether a capture device exists. It never changes after
// construction, so callers can hide voice controls up front.
func (m *Manager) Available() bool { return m != nil && m.available }

func (m *Manager) Mode() Mode { return m.mode }

func (m *Manager) Status() Status {
	if m == nil {
		return StatusIdle
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) IsListening() bool { return m.Status() == StatusListening }

// LiveTranscript is the best current guess of what has been said in the
// session, including text carried over from device restarts. After a
// device-initiated end it keeps the last transcript until the next Start.
func (m *Manager) LiveTranscript() string {
	if m == nil {
		return ""
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.finalizedPrefix + m.hypothesis
}

// Start begins a new session. It is a no-op if a session is already active.
func (m *Manager) Start(ctx context.Context) error {
	if !m.Available() {
		return ErrUnavailable
	}

	m.mu.Lock()
	if m.status != StatusIdle {
		m.mu.Unlock()
		return nil
	}
	m.status = StatusListening
	m.hypothesis = ""
	m.finalizedPrefix = ""
	m.emptyRestarts = 0
	m.epoch++
	epoch := m.epoch
	m.captureCtx = ctx
	m.mu.Unlock()

	m.onListening(true)
	m.onTranscript("")

	if err := m.capture(ctx, epoch); err != nil {
		err = fmt.Errorf("failed to start capture: %w", err)
		m.fail(epoch, err)
		return err
	}
	return nil
}

// Stop ends the session and returns the trimmed transcript. ok is false when
// no session was active or nothing was said.
func (m *Manager) Stop() (transcript string, ok bool) {
	if m == nil {
		return "", false
	}

	m.mu.Lock()
	if m.status != StatusListening {
		m.mu.Unlock()
		return "", false
	}
	m.status = StatusStopping
	transcript = strings.TrimSpace(m.finalizedPrefix + m.hypothesis)
	m.epoch++
	m.mu.Unlock()

	if err := m.device.Stop(); err != nil {
		logger.Warn("failed to stop capture device", "error", err)
	}

	m.mu.Lock()
	m.status = StatusIdle
	m.hypothesis = ""
	m.finalizedPrefix = ""
	m.mu.Unlock()

	m.onListening(false)
	return transcript, transcript != ""
}

// Cancel aborts the session and discards everything captured so far.
func (m *Manager) Cancel() {
	if m == nil {
		return
	}

	m.mu.Lock()
	if m.status != StatusListening {
		m.mu.Unlock()
		return
	}
	m.status = StatusIdle
	m.hypothesis = ""
	m.finalizedPrefix = ""
	m.epoch++
	m.mu.Unlock()

	if err := m.device.Abort(); err != nil {
		logger.Warn("failed to abort capture device", "error", err)
	}

	m.onListening(false)
	m.onTranscript("")
}

func (m *Manager) capture(ctx context.Context, epoch uint64) error {
	return m.device.Capture(ctx,
		speechtotext.WithContinuous(true),
		speechtotext.WithInterimResults(true),
		speechtotext.WithLanguage(m.language),
		speechtotext.WithResultCallback(func(segments []string) { m.onPartialResult(epoch, segments) }),
		speechtotext.WithEndCallback(func() { m.onDeviceEnd(epoch) }),
		speechtotext.WithErrorCallback(func(err error) { m.onDeviceError(epoch, err) }),
	)
}

func (m *Manager) onPartialResult(epoch uint64, segments []string) {
	m.mu.Lock()
	if epoch != m.epoch || m.status != StatusListening {
		m.mu.Unlock()
		return
	}
	m.hypothesis = strings.Join(segments, "")
	m.emptyRestarts = 0
	live := m.finalizedPrefix + m.hypothesis
	m.mu.Unlock()

	m.onTranscript(live)
}

func (m *Manager) onDeviceEnd(epoch uint64) {
	m.mu.Lock()
	if epoch != m.epoch || m.status != StatusListening {
		m.mu.Unlock()
		return
	}

	if m.mode == RestartOnTimeout && (m.restartLimit == 0 || m.emptyRestarts < m.restartLimit) {
		if m.hypothesis == "" {
			m.emptyRestarts++
		}
		m.finalizedPrefix = withSeparator(m.finalizedPrefix + m.hypothesis)
		m.hypothesis = ""
		m.epoch++
		epoch = m.epoch
		ctx := m.captureCtx
		m.mu.Unlock()

		logger.Debug("capture device ended on its own, restarting", "epoch", epoch)
		restartCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", m.mode.String())))
		if err := m.capture(ctx, epoch); err != nil {
			m.fail(epoch, fmt.Errorf("failed to restart capture: %w", err))
		}
		return
	}

	m.status = StatusIdle
	m.epoch++
	transcript := m.finalizedPrefix + m.hypothesis
	m.mu.Unlock()

	logger.Debug("capture device ended, session over", "mode", m.mode.String())
	m.onListening(false)
	m.onEnded(transcript)
}

func (m *Manager) onDeviceError(epoch uint64, err error) {
	if m.fail(epoch, err) {
		if abortErr := m.device.Abort(); abortErr != nil {
			logger.Debug("failed to abort capture device after error", "error", abortErr)
		}
	}
}

// fail resets the session after an unrecoverable error in capture epoch. It
// reports false if the epoch was already stale.
func (m *Manager) fail(epoch uint64, err error) bool {
	m.mu.Lock()
	if epoch != m.epoch || m.status == StatusIdle {
		m.mu.Unlock()
		return false
	}
	m.status = StatusIdle
	m.hypothesis = ""
	m.finalizedPrefix = ""
	m.epoch++
	m.mu.Unlock()

	logger.Error("speech capture failed", "error", err)
	m.onListening(false)
	m.onError(err)
	return true
}

func withSeparator(transcript string) string {
	if transcript == "" {
		return ""
	}
	if last, _ := utf8.DecodeLastRuneInString(transcript); unicode.IsSpace(last) {
		return transcript
	}
	return transcript + " "
}
