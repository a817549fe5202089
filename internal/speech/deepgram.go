package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const deepgramURL = "https://api.deepgram.com/v1/listen"

// DeepgramRecognizer posts the recording to Deepgram's prerecorded API.
type DeepgramRecognizer struct {
	apiKey   string
	endpoint string
	model    string
	language string
	client   *http.Client
}

// NewDeepgram builds a recognizer. An empty endpoint uses the public API.
func NewDeepgram(apiKey, endpoint, model, language string) *DeepgramRecognizer {
	if endpoint == "" {
		endpoint = deepgramURL
	}
	if model == "" || strings.HasPrefix(model, "whisper") {
		model = "nova-2"
	}
	return &DeepgramRecognizer{
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
		language: language,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (d *DeepgramRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	data, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("read audio file: %w", err)
	}

	q := url.Values{}
	q.Set("model", d.model)
	q.Set("smart_format", "true")
	if d.language == "" || d.language == "auto" {
		q.Set("detect_language", "true")
	} else {
		q.Set("language", d.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint+"?"+q.Encode(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Token "+d.apiKey)
	req.Header.Set("Content-Type", "audio/wav")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", &RequestError{Provider: "deepgram", Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", &RequestError{
			Provider:   "deepgram",
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	var parsed struct {
		Results struct {
			Channels []struct {
				Alternatives []struct {
					Transcript string `json:"transcript"`
				} `json:"alternatives"`
			} `json:"channels"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", &RequestError{Provider: "deepgram", StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", ErrUnknownValue
	}
	text := strings.TrimSpace(parsed.Results.Channels[0].Alternatives[0].Transcript)
	if text == "" {
		return "", ErrUnknownValue
	}
	return text, nil
}
