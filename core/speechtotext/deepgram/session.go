package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/websocket/interfaces"
	"github.com/gorilla/websocket"
	"github.com/koscakluka/kuber-voice/core/audio"
	"github.com/koscakluka/kuber-voice/core/speechtotext"
)

const closeGracePeriod = 5 * time.Second

// session is one websocket stream. It ends exactly once, either because the
// caller stopped or aborted it or because the server closed it.
type session struct {
	conn    *websocket.Conn
	input   audio.Input
	options speechtotext.CaptureOptions

	connMu    sync.Mutex
	closing   bool
	lastAudio time.Time

	mu       sync.Mutex
	finished bool
	finals   []string
	interim  string
}

func newSession(conn *websocket.Conn, input audio.Input, options speechtotext.CaptureOptions) *session {
	return &session{
		conn:      conn,
		input:     input,
		options:   options,
		lastAudio: time.Now(),
	}
}

func (s *session) sendAudio(audio []byte) {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.closing {
		return
	}
	s.lastAudio = time.Now()
	if err := s.conn.WriteMessage(websocket.BinaryMessage, audio); err != nil {
		logger.Debug("failed to write audio to deepgram", "error", err)
	}
}

func (s *session) writeControl(messageType api.TypeResponse, closing bool) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.closing {
		return nil
	}
	s.closing = closing
	return s.conn.WriteJSON(struct {
		Type string `json:"type"`
	}{Type: string(messageType)})
}

// finish stops the microphone once. It reports false if the session had
// already finished.
func (s *session) finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return false
	}
	s.finished = true
	if err := s.input.StopCapture(); err != nil {
		logger.Warn("failed to stop audio capture", "error", err)
	}
	return true
}

func (s *session) stop() error {
	if !s.finish() {
		return nil
	}

	if err := s.writeControl(api.TypeCloseStreamResponse, true); err != nil {
		_ = s.conn.Close()
		return fmt.Errorf("failed to close deepgram stream: %w", err)
	}
	return s.conn.SetReadDeadline(time.Now().Add(closeGracePeriod))
}

func (s *session) abort() {
	s.finish()

	s.connMu.Lock()
	s.closing = true
	s.connMu.Unlock()
	_ = s.conn.Close()
}

func (s *session) run(ctx context.Context, onDone func()) {
	keepAliveCtx, cancelKeepAlive := context.WithCancel(ctx)
	go s.keepAlive(keepAliveCtx)

	var readErr error
	for {
		msgType, msg, err := s.conn.ReadMessage()
		if err != nil {
			readErr = err
			break
		}
		if msgType == websocket.TextMessage {
			s.processMessage(msg)
		}
	}

	cancelKeepAlive()
	_ = s.conn.Close()
	onDone()

	if s.finish() {
		unrequestedEndCounter.Add(ctx, 1)
		logger.Debug("deepgram closed the stream", "error", readErr)

		var closeErr *websocket.CloseError
		if errors.As(readErr, &closeErr) && closeErr.Code == websocket.ClosePolicyViolation {
			s.options.ErrorCallback(fmt.Errorf("deepgram rejected the stream: %w", readErr))
		}
	}
	s.options.EndCallback()
}

func (s *session) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.connMu.Lock()
			idle := time.Since(s.lastAudio) >= keepAliveInterval
			s.connMu.Unlock()

			if idle {
				if err := s.writeControl(api.TypeResponse("KeepAlive"), false); err != nil {
					logger.Debug("failed to send keep alive", "error", err)
				}
			}
		}
	}
}

func (s *session) processMessage(msg []byte) {
	var parsedMsg struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(msg, &parsedMsg); err != nil {
		logger.Warn("failed to unmarshal deepgram message", "error", err)
		return
	}

	if api.TypeResponse(parsedMsg.Type) != api.TypeMessageResponse {
		return
	}

	var msgResp api.MessageResponse
	if err := json.Unmarshal(msg, &msgResp); err != nil {
		logger.Warn("failed to unmarshal deepgram results", "error", err)
		return
	}
	if len(msgResp.Channel.Alternatives) == 0 {
		return
	}
	transcript := strings.TrimSpace(msgResp.Channel.Alternatives[0].Transcript)

	s.mu.Lock()
	if msgResp.IsFinal {
		if transcript != "" {
			s.finals = append(s.finals, transcript)
		}
		s.interim = ""
	} else {
		s.interim = transcript
	}
	segments := s.segments()
	s.mu.Unlock()

	if len(segments) > 0 && (msgResp.IsFinal || s.options.InterimResults) {
		s.options.ResultCallback(segments)
	}
}

// segments returns the finalized segments followed by the interim one. Every
// segment after the first carries its leading separator so that joining them
// yields the transcript.
func (s *session) segments() []string {
	segments := make([]string, 0, len(s.finals)+1)
	for _, final := range s.finals {
		segments = appendSegment(segments, final)
	}
	if s.interim != "" {
		segments = appendSegment(segments, s.interim)
	}
	return segments
}

func appendSegment(segments []string, segment string) []string {
	if len(segments) > 0 {
		segment = " " + segment
	}
	return append(segments, segment)
}
