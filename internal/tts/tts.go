// Package tts synthesizes speech for translated text. All providers
// produce MP3.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/petems/polyglot-tray/internal/config"
)

// Synthesizer writes MP3 audio of text spoken in lang to w.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, lang string, w io.Writer) error
}

// New returns the synthesizer selected by cfg.Provider.
func New(cfg config.TTSConfig, keys config.Keys) (Synthesizer, error) {
	switch cfg.Provider {
	case "", "google":
		return NewGoogle(""), nil
	case "openai":
		if keys.OpenAI == "" {
			return nil, errors.New("tts provider openai needs OPENAI_API_KEY")
		}
		return NewOpenAI(keys.OpenAI, "", cfg.Model, cfg.Voice), nil
	case "elevenlabs":
		if keys.ElevenLabs == "" {
			return nil, errors.New("tts provider elevenlabs needs ELEVENLABS_API_KEY")
		}
		return NewElevenLabs(keys.ElevenLabs, "", cfg.Model, cfg.Voice), nil
	default:
		return nil, fmt.Errorf("unknown tts provider %q", cfg.Provider)
	}
}
