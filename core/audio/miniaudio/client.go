// Package miniaudio captures microphone audio through miniaudio.
package miniaudio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/koscakluka/kuber-voice/core/audio"
)

var _ audio.Input = (*Client)(nil)

var ErrClosed = errors.New("capture device closed")

const period = 30 * time.Millisecond

// Client delivers mono linear16 frames from the default capture device.
type Client struct {
	audioContext *malgo.AllocatedContext
	info         audio.EncodingInfo

	mu     sync.Mutex
	device *malgo.Device

	// sink has its own lock: Stop holds mu while waiting for the data
	// callback to return.
	sinkMu sync.Mutex
	sink   func(audio []byte)
}

func NewClient() (*Client, error) {
	audioContext, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		logger.Debug("malgo", "message", message)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize audio context: %w", err)
	}

	c := &Client{audioContext: audioContext, info: audio.DefaultEncodingInfo()}

	config := malgo.DefaultDeviceConfig(malgo.Capture)
	config.SampleRate = uint32(c.info.SampleRate)
	config.Capture.Format = malgo.FormatS16
	config.Capture.Channels = 1
	config.Alsa.NoMMap = 1
	config.PerformanceProfile = malgo.LowLatency
	config.PeriodSizeInFrames = uint32(c.info.Samples(period))
	config.Periods = 3

	c.device, err = malgo.InitDevice(audioContext.Context, config, malgo.DeviceCallbacks{Data: c.onData})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize capture device: %w", err)
	}
	return c, nil
}

func (c *Client) onData(_, input []byte, frameCount uint32) {
	n := int(frameCount) * c.info.Format.BytesPerSample()
	if n == 0 || len(input) < n {
		return
	}

	c.sinkMu.Lock()
	sink := c.sink
	c.sinkMu.Unlock()
	if sink != nil {
		sink(bytes.Clone(input[:n]))
	}
}

func (c *Client) setSink(sink func(audio []byte)) {
	c.sinkMu.Lock()
	c.sink = sink
	c.sinkMu.Unlock()
}

// StartCapture is a no-op when the device is already capturing.
func (c *Client) StartCapture(_ context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return ErrClosed
	}
	if c.device.IsStarted() {
		return nil
	}

	c.setSink(onAudio)
	if err := c.device.Start(); err != nil {
		c.setSink(nil)
		return fmt.Errorf("failed to start capture device: %w", err)
	}
	return nil
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return ErrClosed
	}
	if !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return fmt.Errorf("failed to stop capture device: %w", err)
	}
	c.setSink(nil)
	return nil
}

// Close releases the device and the audio context.
func (c *Client) Close() {
	c.mu.Lock()
	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	c.mu.Unlock()
	c.setSink(nil)

	if c.audioContext != nil {
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
		c.audioContext = nil
	}
}

func (c *Client) EncodingInfo() audio.EncodingInfo { return c.info }
