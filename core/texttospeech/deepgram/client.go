// Package deepgram synthesizes speech with Deepgram Aura over its streaming
// websocket API.
package deepgram

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/koscakluka/ema-walkthrough/core/audio"
	"github.com/koscakluka/ema-walkthrough/core/texttospeech"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const apiHost = "api.deepgram.com"

type TextToSpeechClient struct {
	apiKey       string
	voice        Voice
	encodingInfo audio.EncodingInfo
	httpClient   *http.Client
}

var _ texttospeech.Synthesizer = (*TextToSpeechClient)(nil)

type ClientOption func(*TextToSpeechClient)

// WithAPIKey sets the key used to authenticate. Without it the client reads
// DEEPGRAM_API_KEY.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *TextToSpeechClient) { c.apiKey = apiKey }
}

func WithVoice(voice Voice) ClientOption {
	return func(c *TextToSpeechClient) { c.voice = voice }
}

func WithEncodingInfo(encodingInfo audio.EncodingInfo) ClientOption {
	return func(c *TextToSpeechClient) {
		if !encodingInfo.IsZero() {
			c.encodingInfo = encodingInfo
		}
	}
}

func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *TextToSpeechClient) { c.httpClient = client }
}

func NewTextToSpeechClient(opts ...ClientOption) (*TextToSpeechClient, error) {
	client := &TextToSpeechClient{
		voice:        defaultVoice,
		encodingInfo: audio.GetDefaultEncodingInfo(),
		httpClient:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		client.apiKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}
	if client.voice == "" {
		return nil, fmt.Errorf("invalid voice")
	}

	return client, nil
}

func (c *TextToSpeechClient) SetVoice(voice Voice) {
	c.voice = voice
}

func (c *TextToSpeechClient) Voice() Voice {
	return c.voice
}

func (c *TextToSpeechClient) NewSpeechGenerator(ctx context.Context, opts ...texttospeech.TextToSpeechOption) (texttospeech.SpeechGenerator, error) {
	req := &streamingRequest{
		options: texttospeech.TextToSpeechOptions{
			SpeechAudioCallback: func([]byte) {},
			SpeechEndedCallback: func() {},
			ErrorCallback:       func(error) {},
			EncodingInfo:        c.encodingInfo,
		},
	}
	for _, opt := range opts {
		opt(&req.options)
	}

	var err error
	if req.ws, err = connectWebsocket(ctx, c.apiKey, c.voice, req.options.EncodingInfo); err != nil {
		return nil, fmt.Errorf("failed to open websocket: %w", err)
	}

	go req.processIncomingMessages()

	return req, nil
}
