package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	elevenLabsURL   = "https://api.elevenlabs.io/v1/text-to-speech"
	elevenLabsVoice = "EXAVITQu4vr4xnSDxMaL" // Sarah
	elevenLabsModel = "eleven_multilingual_v2"
)

// ElevenLabs calls the ElevenLabs text-to-speech API.
type ElevenLabs struct {
	apiKey   string
	endpoint string
	model    string
	voiceID  string
	client   *http.Client
}

// NewElevenLabs builds a client. An empty endpoint uses the public API.
// OpenAI voice names in the shared config fall back to the default voice.
func NewElevenLabs(apiKey, endpoint, model, voiceID string) *ElevenLabs {
	if endpoint == "" {
		endpoint = elevenLabsURL
	}
	if model == "" || strings.HasPrefix(model, "tts-") {
		model = elevenLabsModel
	}
	if len(voiceID) < 16 {
		voiceID = elevenLabsVoice
	}
	return &ElevenLabs{
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
		voiceID:  voiceID,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (e *ElevenLabs) Synthesize(ctx context.Context, text, lang string, w io.Writer) error {
	payload, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": e.model,
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s", e.endpoint, e.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("xi-api-key", e.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("elevenlabs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("elevenlabs error (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	_, err = io.Copy(w, resp.Body)
	return err
}
