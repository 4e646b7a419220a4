package orchestration

import (
	"context"
	"fmt"
	"sync"

	"github.com/koscakluka/kuber-voice/core/events"
	"github.com/koscakluka/kuber-voice/core/llms"
	"github.com/koscakluka/kuber-voice/core/texttospeech"
)

// speechPlayer owns the single process-wide utterance. Every Play replaces
// the current utterance; notifications from replaced utterances are dropped
// by comparing their generation with the current one.
type speechPlayer struct {
	playback        texttospeech.SpeechPlayback
	defaultLanguage string
	emit            eventEmitter

	mu         sync.Mutex
	generation uint64
	// active is set from Play until the utterance ends, fails or is stopped.
	active   bool
	speaking bool
	turnID   string
}

func newSpeechPlayer(playback texttospeech.SpeechPlayback, defaultLanguage string, emit eventEmitter) *speechPlayer {
	if emit == nil {
		emit = noopEventEmitter
	}

	return &speechPlayer{
		playback:        playback,
		defaultLanguage: defaultLanguage,
		emit:            emit,
	}
}

func (p *speechPlayer) IsSpeaking() bool {
	if p == nil {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}

// Play interrupts whatever is playing and starts speaking turn.
func (p *speechPlayer) Play(ctx context.Context, turn llms.Turn) error {
	if p == nil || p.playback == nil {
		return nil
	}

	p.mu.Lock()
	interrupted, interruptedTurn, wasSpeaking := p.active, p.turnID, p.speaking
	p.generation++
	generation := p.generation
	p.active = true
	p.speaking = false
	p.turnID = turn.ID
	p.mu.Unlock()

	if interrupted {
		if err := p.playback.Cancel(); err != nil {
			logger.Warn("failed to cancel previous utterance", "error", err)
		}
		if wasSpeaking {
			p.emit(events.NewAssistantPlaybackEnded(interruptedTurn, true))
		}
	}

	language := turn.LanguageCode
	if language == "" {
		language = p.defaultLanguage
	}

	err := p.playback.Speak(ctx, turn.Text,
		texttospeech.WithLanguage(language),
		texttospeech.WithStartedCallback(func() { p.onStarted(generation) }),
		texttospeech.WithEndedCallback(func() { p.onEnded(generation) }),
		texttospeech.WithErrorCallback(func(err error) { p.onError(generation, err) }),
	)
	if err != nil {
		err = fmt.Errorf("failed to speak turn %s: %w", turn.ID, err)
		p.onError(generation, err)
		return err
	}
	return nil
}

// Stop silences the current utterance, if any.
func (p *speechPlayer) Stop() {
	if p == nil || p.playback == nil {
		return
	}

	p.mu.Lock()
	if !p.active {
		p.mu.Unlock()
		return
	}
	wasSpeaking, turnID := p.speaking, p.turnID
	p.generation++
	p.active = false
	p.speaking = false
	p.mu.Unlock()

	if err := p.playback.Cancel(); err != nil {
		logger.Warn("failed to cancel utterance", "error", err)
	}
	if wasSpeaking {
		p.emit(events.NewAssistantPlaybackEnded(turnID, true))
	}
}

func (p *speechPlayer) onStarted(generation uint64) {
	p.mu.Lock()
	if generation != p.generation || !p.active {
		p.mu.Unlock()
		return
	}
	p.speaking = true
	turnID := p.turnID
	p.mu.Unlock()

	p.emit(events.NewAssistantPlaybackStarted(turnID))
}

func (p *speechPlayer) onEnded(generation uint64) {
	p.mu.Lock()
	if generation != p.generation || !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.speaking = false
	turnID := p.turnID
	p.mu.Unlock()

	p.emit(events.NewAssistantPlaybackEnded(turnID, false))
}

func (p *speechPlayer) onError(generation uint64, err error) {
	p.mu.Lock()
	if generation != p.generation || !p.active {
		p.mu.Unlock()
		return
	}
	p.active = false
	p.speaking = false
	turnID := p.turnID
	p.mu.Unlock()

	logger.Error("speech playback failed", "turn_id", turnID, "error", err)
	p.emit(events.NewAssistantPlaybackFailed(turnID, err))
}
