// Package speech turns a recorded phrase into text using a cloud
// speech-to-text service.
package speech

import (
	"context"
	"errors"
	"fmt"

	"github.com/petems/polyglot-tray/internal/config"
)

// ErrUnknownValue means the service answered but heard no words.
var ErrUnknownValue = errors.New("could not understand audio")

// Recognizer transcribes a WAV file.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}

// RequestError is a failed call to the remote service.
type RequestError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s recognition request failed (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s recognition request failed: %v", e.Provider, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// New returns the recognizer selected by cfg.Provider.
func New(cfg config.SpeechConfig, keys config.Keys) (Recognizer, error) {
	switch cfg.Provider {
	case "", "openai":
		if keys.OpenAI == "" {
			return nil, errors.New("speech provider openai needs OPENAI_API_KEY")
		}
		return NewOpenAI(keys.OpenAI, "", cfg.Model, cfg.Language), nil
	case "deepgram":
		if keys.Deepgram == "" {
			return nil, errors.New("speech provider deepgram needs DEEPGRAM_API_KEY")
		}
		return NewDeepgram(keys.Deepgram, "", cfg.Model, cfg.Language), nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Provider)
	}
}
