// Package googletranslate speaks text with Google Translate's speech
// synthesis and plays it on the default audio output.
package googletranslate

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	google_translate_tts "github.com/GrailFinder/google-translate-tts"
	"github.com/GrailFinder/google-translate-tts/handlers"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/koscakluka/kuber-voice/core/texttospeech"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var _ texttospeech.SpeechPlayback = (*Player)(nil)

// synthesizer turns text into mp3 audio.
type synthesizer func(text, language string) (io.Reader, error)

type Player struct {
	speed      float32
	synthesize synthesizer

	mu         sync.Mutex
	generation uint64
	current    *beep.Ctrl

	speakerOnce sync.Once
	speakerRate beep.SampleRate
	speakerErr  error
}

type PlayerOption func(*Player)

// WithSpeed changes the speaking rate. 1 is normal speed.
func WithSpeed(speed float32) PlayerOption {
	return func(p *Player) {
		if speed > 0 {
			p.speed = speed
		}
	}
}

// WithCacheFolder sets where synthesized audio is cached.
func WithCacheFolder(folder string) PlayerOption {
	return func(p *Player) {
		if folder != "" {
			p.synthesize = translateSynthesizer(folder)
		}
	}
}

func withSynthesizer(synthesize synthesizer) PlayerOption {
	return func(p *Player) { p.synthesize = synthesize }
}

func NewPlayer(opts ...PlayerOption) *Player {
	p := &Player{
		speed:      1,
		synthesize: translateSynthesizer(filepath.Join(os.TempDir(), "kuber-voice-tts")),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func translateSynthesizer(folder string) synthesizer {
	return func(text, language string) (io.Reader, error) {
		speech := &google_translate_tts.Speech{
			Folder:   folder,
			Language: language,
			Handler:  &handlers.Beep{},
		}
		return speech.GenerateSpeech(text)
	}
}

// Speak interrupts the current utterance and starts synthesizing text in the
// background. Callbacks are never called while the speaker is locked.
func (p *Player) Speak(ctx context.Context, text string, opts ...texttospeech.SpeakOption) error {
	options := texttospeech.NewSpeakOptions(opts...)
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to speak")
	}

	p.silence()

	p.mu.Lock()
	p.generation++
	generation := p.generation
	p.mu.Unlock()

	go p.play(ctx, generation, text, options)
	return nil
}

// Cancel silences the current utterance and drops any pending synthesis.
func (p *Player) Cancel() error {
	p.mu.Lock()
	p.generation++
	p.mu.Unlock()

	p.silence()
	return nil
}

func (p *Player) silence() {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.mu.Unlock()

	if current != nil {
		speaker.Lock()
		current.Streamer = nil
		speaker.Unlock()
	}
}

func (p *Player) isCurrent(generation uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation == generation
}

func (p *Player) play(ctx context.Context, generation uint64, text string, options texttospeech.SpeakOptions) {
	ctx, span := tracer.Start(ctx, "speak")
	defer span.End()
	span.SetAttributes(
		attribute.String("speech.language", options.Language),
		attribute.Int("speech.text_length", len(text)),
	)

	fail := func(err error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("speech playback failed", "error", err)
		if p.isCurrent(generation) {
			options.ErrorCallback(err)
		}
	}

	reader, err := p.synthesize(text, Language(options.Language))
	if err != nil {
		fail(fmt.Errorf("generate speech failed: %w", err))
		return
	}
	if !p.isCurrent(generation) {
		return
	}

	streamer, format, err := mp3.Decode(io.NopCloser(reader))
	if err != nil {
		fail(fmt.Errorf("mp3 decode failed: %w", err))
		return
	}

	sampleRate, err := p.initSpeaker(format.SampleRate)
	if err != nil {
		_ = streamer.Close()
		fail(fmt.Errorf("failed to init speaker: %w", err))
		return
	}

	playback := beep.Streamer(streamer)
	if p.speed != 1 {
		playback = beep.ResampleRatio(3, float64(p.speed), playback)
	}
	if format.SampleRate != sampleRate {
		playback = beep.Resample(4, format.SampleRate, sampleRate, playback)
	}

	ctrl := &beep.Ctrl{Streamer: beep.Seq(playback, beep.Callback(func() {
		go func() {
			_ = streamer.Close()
			p.mu.Lock()
			current := p.generation == generation
			p.current = nil
			p.mu.Unlock()
			if current {
				options.EndedCallback()
			}
		}()
	}))}

	p.mu.Lock()
	if p.generation != generation {
		p.mu.Unlock()
		_ = streamer.Close()
		return
	}
	p.current = ctrl
	p.mu.Unlock()

	options.StartedCallback()
	speaker.Play(ctrl)
}

func (p *Player) initSpeaker(sampleRate beep.SampleRate) (beep.SampleRate, error) {
	p.speakerOnce.Do(func() {
		p.speakerRate = sampleRate
		p.speakerErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	return p.speakerRate, p.speakerErr
}

// Language maps a BCP-47 tag to the language code Google Translate expects,
// e.g. "hi-IN" to "hi".
func Language(tag string) string {
	base, _, _ := strings.Cut(strings.TrimSpace(tag), "-")
	base = strings.ToLower(base)
	if base == "" {
		return "en"
	}
	return base
}
