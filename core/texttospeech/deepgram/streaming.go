package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/koscakluka/ema-walkthrough/core/audio"
	"github.com/koscakluka/ema-walkthrough/core/texttospeech"
)

// streamingRequest speaks the text of one utterance.
type streamingRequest struct {
	ws *websocket.Conn
	mu sync.Mutex

	options texttospeech.TextToSpeechOptions

	textSent     bool
	textComplete bool
	cancelled    bool
	closed       bool
}

func connectWebsocket(ctx context.Context, apiKey string, voice Voice, encodingInfo audio.EncodingInfo) (*websocket.Conn, error) {
	urlValues := url.Values{}
	urlValues.Set("encoding", encodingInfo.Format.Name())
	urlValues.Set("sample_rate", strconv.Itoa(encodingInfo.SampleRate))
	urlValues.Set("model", string(voice))
	urlValues.Set("container", "none")

	conn, _, err := websocket.DefaultDialer.DialContext(ctx,
		(&url.URL{
			Scheme: "wss",
			Host:   apiHost, Path: "/v1/speak",
			RawQuery: urlValues.Encode(),
		}).String(),
		http.Header{"Authorization": {"token " + apiKey}})
	if err != nil {
		return nil, fmt.Errorf("failed to open socket connection to deepgram: %w", err)
	}

	return conn, nil
}

func (r *streamingRequest) processIncomingMessages() {
	for {
		msgType, msg, err := r.ws.ReadMessage()
		if err != nil {
			r.mu.Lock()
			stopped := r.cancelled || r.closed
			r.mu.Unlock()

			switch {
			case stopped, websocket.IsCloseError(err, websocket.CloseNormalClosure):
				r.options.ErrorCallback(texttospeech.ErrInterrupted)
			default:
				log.Printf("Websocket read error: %v", err)
				r.options.ErrorCallback(fmt.Errorf("failed to read from deepgram: %w", err))
			}
			_ = r.ws.Close()
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if len(msg) > 0 {
				r.options.SpeechAudioCallback(msg)
			}
		case websocket.TextMessage:
			var parsedMsg websocketMessage
			if err := json.Unmarshal(msg, &parsedMsg); err != nil {
				log.Printf("Failed to unmarshal deepgram message: %v", err)
				continue
			}

			switch parsedMsg.Type {
			case "Flushed":
				r.mu.Lock()
				complete := r.textComplete && !r.cancelled
				r.mu.Unlock()
				if complete {
					r.options.SpeechEndedCallback()
					_ = r.Close()
				}
			case "Warning", "Error":
				log.Printf("Deepgram reported: %s", msg)
			}
		}
	}
}

func (r *streamingRequest) checkOpen() error {
	if r.closed {
		return fmt.Errorf("streaming request closed")
	} else if r.cancelled {
		return fmt.Errorf("streaming request cancelled")
	}
	return nil
}

func (r *streamingRequest) SendText(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkOpen(); err != nil {
		return err
	} else if r.textComplete {
		return fmt.Errorf("streaming request text already completed")
	}

	if err := r.write(speakMessage{Type: "Speak", Text: text}); err != nil {
		return fmt.Errorf("failed to send websocket speak message: %w", err)
	}
	r.textSent = true
	return nil
}

func (r *streamingRequest) EndOfText() error {
	r.mu.Lock()
	if err := r.checkOpen(); err != nil {
		r.mu.Unlock()
		return err
	} else if r.textComplete {
		r.mu.Unlock()
		return nil
	}
	r.textComplete = true

	if !r.textSent {
		r.mu.Unlock()
		r.options.SpeechEndedCallback()
		return r.Close()
	}

	defer r.mu.Unlock()
	if err := r.write(flushMsg); err != nil {
		return fmt.Errorf("failed to send websocket flush message: %w", err)
	}
	return nil
}

func (r *streamingRequest) Cancel() error {
	r.mu.Lock()
	if r.closed || r.cancelled {
		r.mu.Unlock()
		return nil
	}
	r.cancelled = true
	err := r.write(clearMsg)
	r.mu.Unlock()

	return errors.Join(err, r.Close())
}

func (r *streamingRequest) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}

	err := r.write(closeMsg)
	r.closed = true
	if err != nil {
		if agressiveCloseErr := r.ws.Close(); agressiveCloseErr != nil {
			return fmt.Errorf("failed to close websocket: %w", errors.Join(err, agressiveCloseErr))
		}
	}
	return nil
}

type websocketMessage struct {
	Type string `json:"type"`
}

type speakMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

var (
	flushMsg = websocketMessage{Type: "Flush"}
	clearMsg = websocketMessage{Type: "Clear"}
	closeMsg = websocketMessage{Type: "Close"}
)

// write must be called with r.mu held.
func (r *streamingRequest) write(msg any) error {
	if r.closed || r.ws == nil {
		return fmt.Errorf("websocket connection closed")
	}
	if err := r.ws.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to write to websocket: %w", err)
	}
	return nil
}
