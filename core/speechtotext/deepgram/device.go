// Package deepgram implements a speech capture device on top of Deepgram's
// live transcription websocket.
//
// Deepgram closes a stream that stops receiving audio for a while, so the
// device reports [Device.EndsOnTimeout] and is expected to be restarted by
// its caller.
package deepgram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/kuber-voice/core/audio"
	"github.com/koscakluka/kuber-voice/core/speechtotext"
)

const (
	DefaultURL   = "wss://api.deepgram.com/v1/listen"
	DefaultModel = "nova-2"

	keepAliveInterval = 5 * time.Second
)

var (
	ErrNoAudioInput = errors.New("no audio input configured")
	ErrMissingKey   = errors.New("deepgram api key not found")
)

var (
	_ speechtotext.Device               = (*Device)(nil)
	_ speechtotext.TimeoutReporter      = (*Device)(nil)
	_ speechtotext.AvailabilityReporter = (*Device)(nil)
)

type Device struct {
	apiKey string
	model  string
	url    string
	input  audio.Input
	dialer *websocket.Dialer

	mu      sync.Mutex
	current *session
}

type DeviceOption func(*Device)

func WithModel(model string) DeviceOption {
	return func(d *Device) {
		if model != "" {
			d.model = model
		}
	}
}

// WithURL overrides the listen endpoint.
func WithURL(url string) DeviceOption {
	return func(d *Device) {
		if url != "" {
			d.url = url
		}
	}
}

func WithAudioInput(input audio.Input) DeviceOption {
	return func(d *Device) { d.input = input }
}

func NewDevice(apiKey string, opts ...DeviceOption) *Device {
	d := &Device{
		apiKey: apiKey,
		model:  DefaultModel,
		url:    DefaultURL,
		dialer: websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Device) Available() bool     { return d.apiKey != "" && d.input != nil }
func (d *Device) EndsOnTimeout() bool { return true }

// Capture opens a new stream and starts feeding it microphone audio. A
// stream that is still open is aborted first.
func (d *Device) Capture(ctx context.Context, opts ...speechtotext.CaptureOption) error {
	if d.apiKey == "" {
		return ErrMissingKey
	}
	if d.input == nil {
		return ErrNoAudioInput
	}

	options := speechtotext.NewCaptureOptions(append([]speechtotext.CaptureOption{
		speechtotext.WithEncodingInfo(d.input.EncodingInfo()),
	}, opts...)...)

	if err := checkEncoding(options.EncodingInfo); err != nil {
		return fmt.Errorf("invalid encoding: %w", err)
	}

	if previous := d.swap(nil); previous != nil {
		previous.abort()
	}

	conn, err := d.connect(ctx, options)
	if err != nil {
		return err
	}

	s := newSession(conn, d.input, options)
	d.swap(s)
	if err := d.input.StartCapture(ctx, s.sendAudio); err != nil {
		d.release(s)
		s.abort()
		return fmt.Errorf("failed to start audio capture: %w", err)
	}

	go s.run(ctx, func() { d.release(s) })
	return nil
}

// Stop asks Deepgram to flush pending results and close the stream.
func (d *Device) Stop() error {
	s := d.swap(nil)
	if s == nil {
		return nil
	}
	return s.stop()
}

// Abort closes the stream without waiting for pending results.
func (d *Device) Abort() error {
	s := d.swap(nil)
	if s == nil {
		return nil
	}
	s.abort()
	return nil
}

func (d *Device) swap(s *session) *session {
	d.mu.Lock()
	defer d.mu.Unlock()

	previous := d.current
	d.current = s
	return previous
}

func (d *Device) release(s *session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current == s {
		d.current = nil
	}
}

func (d *Device) connect(ctx context.Context, options speechtotext.CaptureOptions) (*websocket.Conn, error) {
	listenURL, err := url.Parse(d.url)
	if err != nil {
		return nil, fmt.Errorf("invalid listen url: %w", err)
	}

	queryParams := listenURL.Query()
	queryParams.Set("encoding", options.EncodingInfo.Format.Name())
	queryParams.Set("sample_rate", strconv.Itoa(options.EncodingInfo.SampleRate))
	queryParams.Set("channels", "1")
	queryParams.Set("model", d.model)
	queryParams.Set("language", options.Language)
	queryParams.Set("smart_format", "true")
	queryParams.Set("punctuate", "true")
	if options.InterimResults {
		queryParams.Set("interim_results", "true")
	}
	if !options.Continuous {
		queryParams.Set("endpointing", "300")
	}
	listenURL.RawQuery = queryParams.Encode()

	conn, _, err := d.dialer.DialContext(ctx, listenURL.String(),
		http.Header{"Authorization": {"Token " + d.apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}
	return conn, nil
}
