package speech

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIRecognizer uses the Whisper transcription endpoint.
type OpenAIRecognizer struct {
	client   *openai.Client
	model    string
	language string
}

// NewOpenAI builds a recognizer. An empty baseURL uses the public API.
func NewOpenAI(apiKey, baseURL, model, language string) *OpenAIRecognizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	if language == "auto" {
		language = ""
	}
	return &OpenAIRecognizer{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

func (r *OpenAIRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	resp, err := r.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    r.model,
		FilePath: wavPath,
		Language: r.language,
	})
	if err != nil {
		reqErr := &RequestError{Provider: "openai", Err: err}
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			reqErr.StatusCode = apiErr.HTTPStatusCode
		}
		return "", reqErr
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", ErrUnknownValue
	}
	return text, nil
}
