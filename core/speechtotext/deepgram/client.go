// Package deepgram transcribes live audio with Deepgram's streaming listen
// API.
package deepgram

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-walkthrough/core/speechtotext"
)

type TranscriptionClient struct {
	apiKey   string
	model    string
	language string

	conn      *websocket.Conn
	connMu    sync.Mutex
	lastMsgTs time.Time
}

var _ speechtotext.Driver = (*TranscriptionClient)(nil)

type ClientOption func(*TranscriptionClient)

// WithAPIKey sets the key used to authenticate. Without it the client reads
// DEEPGRAM_API_KEY.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *TranscriptionClient) { c.apiKey = apiKey }
}

func WithModel(model string) ClientOption {
	return func(c *TranscriptionClient) { c.model = model }
}

func WithLanguage(language string) ClientOption {
	return func(c *TranscriptionClient) { c.language = language }
}

func NewClient(opts ...ClientOption) (*TranscriptionClient, error) {
	client := &TranscriptionClient{model: "nova-3", language: "en-US"}
	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		client.apiKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	if client.apiKey == "" {
		return nil, fmt.Errorf("deepgram api key not found")
	}

	return client, nil
}
