// Package capture records one spoken phrase and transcribes it.
package capture

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/petems/polyglot-tray/internal/audio"
	"github.com/petems/polyglot-tray/internal/speech"
)

// State of a recording run.
type State int

const (
	Idle State = iota
	Listening
	Recognizing
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Listening:
		return "listening"
	case Recognizing:
		return "recognizing"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status lines shown to the user.
const (
	StatusListening      = "Listening..."
	StatusRecognizing    = "Recognizing speech..."
	StatusUnintelligible = "Could not understand audio"
)

// Event is sent by Run for every state change.
type Event struct {
	State      State
	Status     string
	Transcript string // set on Succeeded
	Err        error  // set on Failed
}

// Terminal reports whether this is the last event of the run.
func (e Event) Terminal() bool { return e.State == Succeeded || e.State == Failed }

type Config struct {
	Audio      audio.Capture
	Recognizer speech.Recognizer
	Listen     audio.ListenOpts
	TempDir    string // where the recording is staged, default os.TempDir()
	Logger     zerolog.Logger
}

// Worker runs capture sessions. It holds no per-session state, so one
// Worker can serve sequential sessions.
type Worker struct {
	audio   audio.Capture
	rec     speech.Recognizer
	opts    audio.ListenOpts
	tempDir string
	log     zerolog.Logger
}

func New(cfg Config) *Worker {
	if cfg.Listen.SampleRate <= 0 {
		cfg.Listen.SampleRate = 16000
	}
	return &Worker{
		audio:   cfg.Audio,
		rec:     cfg.Recognizer,
		opts:    cfg.Listen,
		tempDir: cfg.TempDir,
		log:     cfg.Logger,
	}
}

// Run records from deviceID and sends status events followed by exactly
// one terminal event, then closes events.
func (w *Worker) Run(ctx context.Context, deviceID string, events chan<- Event) {
	defer close(events)

	fail := func(status string, err error) {
		w.log.Warn().Err(err).Msg("Capture failed")
		events <- Event{State: Failed, Status: status, Err: err}
	}

	events <- Event{State: Listening, Status: StatusListening}
	phrase, err := w.listen(ctx, deviceID)
	if err != nil {
		fail("Error: "+err.Error(), err)
		return
	}

	wavPath, err := w.stage(phrase)
	if err != nil {
		fail("Error: "+err.Error(), err)
		return
	}
	defer os.Remove(wavPath)

	events <- Event{State: Recognizing, Status: StatusRecognizing}
	text, err := w.rec.Recognize(ctx, wavPath)
	switch {
	case errors.Is(err, speech.ErrUnknownValue):
		fail(StatusUnintelligible, err)
	case err != nil:
		fail("Error: "+err.Error(), err)
	default:
		w.log.Info().Str("transcript", text).Msg("Recognized")
		events <- Event{State: Succeeded, Transcript: text}
	}
}

func (w *Worker) listen(ctx context.Context, deviceID string) ([]float32, error) {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	// Bounded audio buffer
	samples := make(chan []float32, 32)
	if err := w.audio.Start(ctx, deviceID, w.opts.SampleRate, samples); err != nil {
		return nil, err
	}

	l := audio.NewListener(w.opts)
	if err := l.Calibrate(ctx, samples); err != nil {
		return nil, fmt.Errorf("calibrate: %w", err)
	}
	w.log.Debug().Float64("threshold", l.Threshold()).Msg("Calibrated")

	phrase, err := l.Listen(ctx, samples)
	if err != nil {
		return nil, err
	}
	w.log.Debug().Int("samples", len(phrase)).Msg("Phrase captured")
	return phrase, nil
}

func (w *Worker) stage(phrase []float32) (string, error) {
	f, err := os.CreateTemp(w.tempDir, "polyglot-*.wav")
	if err != nil {
		return "", fmt.Errorf("create recording: %w", err)
	}
	path := f.Name()
	f.Close()

	if err := audio.WriteWAV(path, phrase, w.opts.SampleRate); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
