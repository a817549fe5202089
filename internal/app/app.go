package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/petems/polyglot-tray/internal/audio"
	"github.com/petems/polyglot-tray/internal/capture"
	"github.com/petems/polyglot-tray/internal/catalog"
	"github.com/petems/polyglot-tray/internal/config"
	"github.com/petems/polyglot-tray/internal/pipeline"
)

// ErrSessionRunning is returned when a recording is requested while one is
// already in progress.
var ErrSessionRunning = errors.New("a recording session is already running")

// Status lines set by the orchestrator. Capture statuses come from the
// worker events.
const (
	StatusNoLanguages = "Please select at least one target language."
	StatusTranslating = "Translating text..."
	StatusTranslated  = "Text translated and audio generated."
	StatusSaved       = "Audio files saved."

	transcriptPrefix = "Spoken Text: "
)

// View is the toolkit-specific presentation (tray menu, terminal).
// Calls may arrive from any goroutine.
type View interface {
	SetStartEnabled(enabled bool)
	SetSaveEnabled(enabled bool)
	SetStatus(status string)
	SetTranscript(text string)
	SetTranslations(text string)
}

// Recorder runs one capture session, see capture.Worker.
type Recorder interface {
	Run(ctx context.Context, deviceID string, events chan<- capture.Event)
}

// Processor translates and synthesizes a transcript, see pipeline.Pipeline.
type Processor interface {
	Process(ctx context.Context, transcript string, codes []string) ([]pipeline.Result, error)
	OutputDir() string
}

// DeviceLister lists audio input devices.
type DeviceLister interface {
	ListDevices() ([]audio.AudioDevice, error)
}

type Config struct {
	Catalog   *catalog.Catalog
	Recorder  Recorder
	Pipeline  Processor
	Player    audio.Player // Optional - can be nil
	Devices   DeviceLister // Optional - can be nil
	View      View
	Config    *config.Config
	Logger    zerolog.Logger
	Clipboard func(text string) error // defaults to clipboard.WriteAll
}

// Session is one Start-to-finish run. Languages are fixed when it starts.
type Session struct {
	ID         string
	Names      []string
	Codes      []string
	Transcript string
	Results    []pipeline.Result
}

type App struct {
	catalog *catalog.Catalog
	rec     Recorder
	proc    Processor
	player  audio.Player
	devices DeviceLister
	view    View
	cfg     *config.Config
	log     zerolog.Logger
	clip    func(string) error

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	busy    bool
	session *Session
	done    chan struct{}
}

func New(cfg Config) *App {
	clip := cfg.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		catalog: cfg.Catalog,
		rec:     cfg.Recorder,
		proc:    cfg.Pipeline,
		player:  cfg.Player,
		devices: cfg.Devices,
		view:    cfg.View,
		cfg:     cfg.Config,
		log:     cfg.Logger,
		clip:    clip,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetView replaces the view. Used when the view is built after the App.
func (a *App) SetView(v View) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view = v
}

// Catalog returns the language catalog.
func (a *App) Catalog() *catalog.Catalog { return a.catalog }

// StartRecording starts a session translating into the named languages.
// It returns once the session is running; results are reported to the
// view.
func (a *App) StartRecording(names []string) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrSessionRunning
	}
	view := a.view

	view.SetStartEnabled(false)
	view.SetSaveEnabled(false)
	view.SetTranscript("")
	view.SetTranslations("")

	codes, err := a.catalog.Codes(names)
	if err != nil {
		a.mu.Unlock()
		view.SetStatus("Error: " + err.Error())
		view.SetStartEnabled(true)
		return err
	}
	if len(codes) == 0 {
		a.mu.Unlock()
		view.SetStatus(StatusNoLanguages)
		view.SetStartEnabled(true)
		return nil
	}

	sess := &Session{
		ID:    uuid.NewString(),
		Names: append([]string(nil), names...),
		Codes: codes,
	}
	ctx, cancel := context.WithCancel(a.ctx)
	done := make(chan struct{})
	deviceID := a.cfg.Audio.DeviceID

	a.busy = true
	a.session = sess
	a.done = done
	a.mu.Unlock()

	a.log.Info().Str("session", sess.ID).Strs("languages", codes).Msg("Starting recording")
	go a.run(ctx, cancel, sess, deviceID, view, done)
	return nil
}

func (a *App) run(ctx context.Context, cancel context.CancelFunc, sess *Session, deviceID string, view View, done chan struct{}) {
	log := a.log.With().Str("session", sess.ID).Logger()
	defer func() {
		cancel()
		a.mu.Lock()
		a.busy = false
		a.mu.Unlock()
		view.SetStartEnabled(true)
		close(done)
	}()

	events := make(chan capture.Event, 4)
	go a.rec.Run(ctx, deviceID, events)

	for ev := range events {
		log.Debug().Stringer("state", ev.State).Msg("Capture event")
		switch ev.State {
		case capture.Succeeded:
			a.translate(ctx, log, sess, ev.Transcript, view)
		default:
			view.SetStatus(ev.Status)
		}
	}
}

func (a *App) translate(ctx context.Context, log zerolog.Logger, sess *Session, transcript string, view View) {
	a.mu.Lock()
	sess.Transcript = transcript
	a.mu.Unlock()

	view.SetTranscript(transcriptPrefix + transcript)
	view.SetStatus(StatusTranslating)

	results, err := a.proc.Process(ctx, transcript, sess.Codes)
	if err != nil {
		log.Error().Err(err).Msg("Translation failed")
		view.SetStatus("Error: " + err.Error())
		return
	}

	a.mu.Lock()
	sess.Results = results
	a.mu.Unlock()

	view.SetTranslations(pipeline.Display(results))
	view.SetStatus(StatusTranslated)
	view.SetSaveEnabled(true)

	if a.player == nil || len(results) == 0 {
		return
	}
	// Only the first selected language is played.
	if err := a.player.Play(a.ctx, results[0].AudioPath); err != nil {
		log.Warn().Err(err).Str("path", results[0].AudioPath).Msg("Playback failed")
	}
}

// SaveAudio moves the current session's audio files into folder. An empty
// folder means the picker was cancelled.
func (a *App) SaveAudio(folder string) {
	if folder == "" {
		return
	}

	a.mu.Lock()
	var codes []string
	if a.session != nil {
		for _, r := range a.session.Results {
			codes = append(codes, r.Code)
		}
	}
	view := a.view
	a.mu.Unlock()

	for _, err := range pipeline.Relocate(a.proc.OutputDir(), folder, codes) {
		a.log.Error().Err(err).Str("folder", folder).Msg("Failed to save audio")
	}
	a.log.Info().Str("folder", folder).Int("files", len(codes)).Msg("Audio saved")
	view.SetStatus(StatusSaved)
}

// CopyTranslations puts the translation lines of the last session on the
// clipboard.
func (a *App) CopyTranslations() error {
	a.mu.Lock()
	var text string
	if a.session != nil {
		text = pipeline.Display(a.session.Results)
	}
	a.mu.Unlock()

	if text == "" {
		return errors.New("no translations to copy")
	}
	if err := a.clip(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// OnHotkey starts a recording with the checked languages on key press.
func (a *App) OnHotkey(pressed bool) {
	if !pressed {
		return
	}
	err := a.StartRecording(a.Selected())
	if errors.Is(err, ErrSessionRunning) {
		a.log.Debug().Msg("Hotkey ignored, session running")
	}
}

// Tray actions

// Selected returns the checked language names.
func (a *App) Selected() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.cfg.Selected...)
}

// SetSelected stores the checked languages, keeping catalog order.
func (a *App) SetSelected(names []string) error {
	checked := make(map[string]bool, len(names))
	for _, n := range names {
		checked[n] = true
	}
	var ordered []string
	for _, l := range a.catalog.Languages() {
		if checked[l.Name] {
			ordered = append(ordered, l.Name)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.Selected = ordered
	return a.cfg.Save()
}

func (a *App) SetDevice(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.busy {
		return ErrSessionRunning
	}

	a.cfg.Audio.DeviceID = id
	return a.cfg.Save()
}

func (a *App) ListDevices() ([]audio.AudioDevice, error) {
	if a.devices == nil {
		return nil, nil
	}
	return a.devices.ListDevices()
}

func (a *App) IsBusy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Session returns a copy of the current or last session.
func (a *App) Session() (Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return Session{}, false
	}
	s := *a.session
	s.Results = append([]pipeline.Result(nil), s.Results...)
	return s, true
}

// Wait blocks until the running session, if any, has finished.
func (a *App) Wait(ctx context.Context) error {
	a.mu.Lock()
	done := a.done
	a.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown cancels a running session and stops playback.
func (a *App) Shutdown(ctx context.Context) error {
	a.cancel()
	err := a.Wait(ctx)
	if a.player != nil {
		a.player.Stop()
	}
	return err
}
