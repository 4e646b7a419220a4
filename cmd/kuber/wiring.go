package main

import (
	"fmt"
	"time"

	"github.com/koscakluka/kuber-voice/core/audio"
	"github.com/koscakluka/kuber-voice/core/audio/miniaudio"
	"github.com/koscakluka/kuber-voice/core/audio/portaudio"
	"github.com/koscakluka/kuber-voice/core/speech"
	"github.com/koscakluka/kuber-voice/core/speechtotext/deepgram"
	"github.com/koscakluka/kuber-voice/internal/config"
)

// portaudioChunk is how much audio each PortAudio read delivers.
const portaudioChunk = 64 * time.Millisecond

// newSpeechDevice returns the Deepgram device and a function releasing the
// microphone. Without an API key the device is returned without audio input
// and reports itself unavailable.
func newSpeechDevice(cfg config.SpeechConfig) (*deepgram.Device, func(), error) {
	var opts []deepgram.DeviceOption
	if cfg.Model != "" {
		opts = append(opts, deepgram.WithModel(cfg.Model))
	}
	if cfg.APIKey == "" {
		return deepgram.NewDevice(cfg.APIKey, opts...), func() {}, nil
	}

	input, release, err := newAudioInput(cfg.AudioInput)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, deepgram.WithAudioInput(input))
	return deepgram.NewDevice(cfg.APIKey, opts...), release, nil
}

func newAudioInput(kind string) (audio.Input, func(), error) {
	switch kind {
	case config.AudioInputPortaudio:
		client, err := portaudio.NewClient(audio.DefaultEncodingInfo().Samples(portaudioChunk))
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case config.AudioInputMiniaudio, "":
		client, err := miniaudio.NewClient()
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown audio input %q", kind)
	}
}

func speechOptions(cfg config.SpeechConfig) []speech.ManagerOption {
	opts := []speech.ManagerOption{}
	if cfg.Language != "" {
		opts = append(opts, speech.WithLanguage(cfg.Language))
	}
	if mode, ok := speech.ParseMode(cfg.Mode); ok {
		opts = append(opts, speech.WithMode(mode))
	}
	if cfg.RestartLimit > 0 {
		opts = append(opts, speech.WithRestartLimit(cfg.RestartLimit))
	}
	return opts
}
