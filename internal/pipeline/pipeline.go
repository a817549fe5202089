// Package pipeline turns a transcript into one translated MP3 per target
// language.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/petems/polyglot-tray/internal/translate"
	"github.com/petems/polyglot-tray/internal/tts"
)

// Result is the outcome for one target language.
type Result struct {
	Code      string
	Text      string
	AudioPath string
}

type Config struct {
	Translator  translate.Translator
	Synthesizer tts.Synthesizer
	OutputDir   string
	Logger      zerolog.Logger
}

type Pipeline struct {
	tr  translate.Translator
	syn tts.Synthesizer
	dir string
	log zerolog.Logger
}

func New(cfg Config) *Pipeline {
	dir := cfg.OutputDir
	if dir == "" {
		dir = "."
	}
	return &Pipeline{
		tr:  cfg.Translator,
		syn: cfg.Synthesizer,
		dir: dir,
		log: cfg.Logger,
	}
}

// OutputDir is where artifacts are written.
func (p *Pipeline) OutputDir() string { return p.dir }

// ArtifactName is the file name of the synthesized audio for code.
func ArtifactName(code string) string {
	return fmt.Sprintf("translated_audio_%s.mp3", code)
}

// ArtifactPath joins dir and ArtifactName(code).
func ArtifactPath(dir, code string) string {
	return filepath.Join(dir, ArtifactName(code))
}

// Process translates and synthesizes transcript for each code in order.
// The first failure stops the run; artifacts already written for earlier
// languages are left in place. Existing artifacts are overwritten.
func (p *Pipeline) Process(ctx context.Context, transcript string, codes []string) ([]Result, error) {
	results := make([]Result, 0, len(codes))
	for i, code := range codes {
		log := p.log.With().Str("lang", code).Int("index", i).Logger()

		text, err := p.tr.Translate(ctx, transcript, code)
		if err != nil {
			return nil, fmt.Errorf("translate %s: %w", code, err)
		}
		log.Debug().Str("text", text).Msg("Translated")

		path := ArtifactPath(p.dir, code)
		if err := p.synthesize(ctx, text, code, path); err != nil {
			return nil, fmt.Errorf("synthesize %s: %w", code, err)
		}
		log.Info().Str("path", path).Msg("Audio generated")

		results = append(results, Result{Code: code, Text: text, AudioPath: path})
	}
	return results, nil
}

// synthesize writes to a temp file first so a failed call never leaves a
// truncated artifact behind.
func (p *Pipeline) synthesize(ctx context.Context, text, code, path string) error {
	tmpPath := path + ".part"
	defer os.Remove(tmpPath)

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := p.syn.Synthesize(ctx, text, code, out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Move to final location
	return os.Rename(tmpPath, path)
}

// Display renders results as "code: text" lines in order.
func Display(results []Result) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "%s: %s\n", r.Code, r.Text)
	}
	return b.String()
}

// Relocate moves the artifacts for codes from srcDir into dstDir. It keeps
// going after a failure and returns every per-file error.
func Relocate(srcDir, dstDir string, codes []string) []error {
	var errs []error
	for _, code := range codes {
		src := ArtifactPath(srcDir, code)
		dst := ArtifactPath(dstDir, code)
		if err := os.Rename(src, dst); err != nil {
			errs = append(errs, fmt.Errorf("move %s: %w", ArtifactName(code), err))
		}
	}
	return errs
}
