// Package portaudio captures the microphone through PortAudio. It has no
// playback side; narration output needs the miniaudio backend.
package portaudio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/koscakluka/ema-walkthrough/core/audio"
)

type Client struct {
	stream *portaudio.Stream
	in     []int16

	cancel context.CancelFunc
	done   chan struct{}
	mu     sync.Mutex
}

func NewClient(bufferSize int) (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize portaudio: %w", err)
	}

	in := make([]int16, bufferSize)
	stream, err := portaudio.OpenDefaultStream(1, 0, audio.DefaultSampleRate, bufferSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("failed to open portaudio stream: %w", err)
	}

	return &Client{stream: stream, in: in}, nil
}

func (c *Client) StartCapture(ctx context.Context, onAudio func(audio []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return nil
	}

	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("failed to start portaudio stream: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.read(ctx, onAudio, c.done)
	return nil
}

func (c *Client) read(ctx context.Context, onAudio func(audio []byte), done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := c.stream.Read(); err != nil {
			log.Printf("Failed to read from PortAudio stream: %v", err)
			continue
		}

		audioBuffer := bytes.Buffer{}
		if err := binary.Write(&audioBuffer, binary.LittleEndian, c.in); err != nil {
			log.Printf("Failed to encode PortAudio samples: %v", err)
			continue
		}
		onAudio(audioBuffer.Bytes())
	}
}

func (c *Client) StopCapture() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return nil
	}

	cancel()
	<-done
	if err := c.stream.Stop(); err != nil {
		return fmt.Errorf("failed to stop portaudio stream: %w", err)
	}
	return nil
}

func (c *Client) Close() error {
	stopErr := c.StopCapture()
	closeErr := c.stream.Close()
	return errors.Join(stopErr, closeErr, portaudio.Terminate())
}

func (c *Client) EncodingInfo() audio.EncodingInfo {
	return audio.GetDefaultEncodingInfo()
}
