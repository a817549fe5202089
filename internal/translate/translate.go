// Package translate sends text to a machine translation service.
package translate

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/petems/polyglot-tray/internal/config"
)

// Translator converts text into the language identified by code.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// New returns the translator selected by cfg.Provider, paced to
// cfg.RequestsPerMinute when set.
func New(cfg config.TranslateConfig, keys config.Keys) (Translator, error) {
	var t Translator
	switch cfg.Provider {
	case "", "mymemory":
		t = NewMyMemory("", cfg.SourceLanguage, cfg.Email)
	case "openai":
		if keys.OpenAI == "" {
			return nil, errors.New("translate provider openai needs OPENAI_API_KEY")
		}
		t = NewOpenAI(keys.OpenAI, "", cfg.Model)
	default:
		return nil, fmt.Errorf("unknown translate provider %q", cfg.Provider)
	}
	return Limited(t, cfg.RequestsPerMinute), nil
}

type limited struct {
	next    Translator
	limiter *rate.Limiter
}

// Limited paces calls to t at perMinute requests per minute. Non-positive
// values return t unchanged.
func Limited(t Translator, perMinute int) Translator {
	if perMinute <= 0 {
		return t
	}
	return &limited{
		next:    t,
		limiter: rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 1),
	}
}

func (l *limited) Translate(ctx context.Context, text, target string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}
	return l.next.Translate(ctx, text, target)
}
