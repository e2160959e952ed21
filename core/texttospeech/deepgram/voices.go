package deepgram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"
)

type Voice string

const defaultVoice Voice = "aura-2-thalia-en"

var knownVoices = []Voice{
	"aura-2-thalia-en",
	"aura-2-andromeda-en",
	"aura-2-helena-en",
	"aura-2-apollo-en",
	"aura-2-arcas-en",
	"aura-2-aries-en",
	"aura-asteria-en",
	"aura-luna-en",
	"aura-orion-en",
}

type modelsResponse struct {
	TTS []struct {
		CanonicalName string   `json:"canonical_name"`
		Languages     []string `json:"languages"`
	} `json:"tts"`
}

// GetAvailableVoices lists the voices Deepgram offers. When the listing
// cannot be fetched the known voices are returned along with the error.
func (c *TextToSpeechClient) GetAvailableVoices(ctx context.Context) ([]Voice, error) {
	u := url.URL{Scheme: "https", Host: apiHost, Path: "/v1/models"}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return slices.Clone(knownVoices), fmt.Errorf("failed to create models request: %w", err)
	}
	req.Header.Set("Authorization", "token "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return slices.Clone(knownVoices), fmt.Errorf("failed to list deepgram models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return slices.Clone(knownVoices), fmt.Errorf("failed to list deepgram models: status %d", resp.StatusCode)
	}

	var models modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&models); err != nil {
		return slices.Clone(knownVoices), fmt.Errorf("failed to decode deepgram models: %w", err)
	}

	voices := make([]Voice, 0, len(models.TTS))
	for _, model := range models.TTS {
		voice := Voice(model.CanonicalName)
		if voice == "" || slices.Contains(voices, voice) {
			continue
		}
		voices = append(voices, voice)
	}
	if len(voices) == 0 {
		return slices.Clone(knownVoices), nil
	}

	return voices, nil
}

// ParseVoice accepts a full model name or a short name like "thalia".
func ParseVoice(name string) (Voice, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return defaultVoice, nil
	}
	if strings.HasPrefix(name, "aura-") {
		return Voice(name), nil
	}
	for _, voice := range knownVoices {
		if strings.Contains(string(voice), "-"+name+"-") {
			return voice, nil
		}
	}
	return "", fmt.Errorf("unknown voice %q", name)
}
