package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/petems/polyglot-tray/internal/app"
	"github.com/petems/polyglot-tray/internal/audio"
	"github.com/petems/polyglot-tray/internal/capture"
	"github.com/petems/polyglot-tray/internal/catalog"
	"github.com/petems/polyglot-tray/internal/config"
	"github.com/petems/polyglot-tray/internal/hotkey"
	"github.com/petems/polyglot-tray/internal/logging"
	"github.com/petems/polyglot-tray/internal/permissions"
	"github.com/petems/polyglot-tray/internal/pipeline"
	"github.com/petems/polyglot-tray/internal/speech"
	"github.com/petems/polyglot-tray/internal/translate"
	"github.com/petems/polyglot-tray/internal/tray"
	"github.com/petems/polyglot-tray/internal/tts"
)

var (
	// Version is set via ldflags at build time
	Version = "dev"
	// Commit is set via ldflags at build time
	Commit = "unknown"
)

type globalFlags struct {
	configPath    string
	languagesFile string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log := logging.New()
		log.Fatal().Err(err).Msg("polyglot-tray failed")
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "polyglot-tray",
		Short:         "Speak a phrase, hear it in other languages",
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default: platform config dir)")
	root.PersistentFlags().StringVar(&flags.languagesFile, "languages", "", "language codes JSON file (overrides languages_file)")

	root.AddCommand(newLanguagesCmd(flags), newOnceCmd(flags))
	return root
}

// loadConfig reads the config and the language catalog.
func loadConfig(flags *globalFlags) (*config.Config, *catalog.Catalog, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFrom(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.languagesFile != "" {
		cfg.LanguagesFile = flags.languagesFile
	}

	cat, err := catalog.Load(cfg.LanguagesFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, cat, nil
}

// services are the long-lived components shared by the tray and the
// headless command.
type services struct {
	capture  audio.Capture
	player   audio.Player
	worker   *capture.Worker
	pipeline *pipeline.Pipeline
}

func (s *services) Close() {
	if s.player != nil {
		s.player.Close()
	}
	if s.capture != nil {
		s.capture.Close()
	}
}

func buildServices(cfg *config.Config, log zerolog.Logger, withPlayer bool) (*services, error) {
	keys := config.LoadKeys()

	recognizer, err := speech.New(cfg.Speech, keys)
	if err != nil {
		return nil, err
	}
	translator, err := translate.New(cfg.Translate, keys)
	if err != nil {
		return nil, err
	}
	synth, err := tts.New(cfg.TTS, keys)
	if err != nil {
		return nil, err
	}

	s := &services{}

	// Initialize audio capture
	s.capture, err = audio.New(cfg.Audio)
	if err != nil {
		return nil, fmt.Errorf("initialize audio: %w", err)
	}

	if withPlayer {
		s.player, err = audio.NewPlayer(log)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("initialize playback: %w", err)
		}
	}

	s.worker = capture.New(capture.Config{
		Audio:      s.capture,
		Recognizer: recognizer,
		Listen: audio.ListenOpts{
			SampleRate:     cfg.Audio.SampleRate,
			Calibration:    cfg.Audio.Calibration.Std(),
			Timeout:        cfg.Audio.ListenTimeout.Std(),
			PauseThreshold: cfg.Audio.PauseThreshold.Std(),
			PhraseLimit:    cfg.Audio.PhraseLimit.Std(),
		},
		Logger: log,
	})

	outDir := cfg.OutputDir
	if abs, err := filepath.Abs(outDir); err == nil {
		outDir = abs
	}
	s.pipeline = pipeline.New(pipeline.Config{
		Translator:  translator,
		Synthesizer: synth,
		OutputDir:   outDir,
		Logger:      log,
	})
	return s, nil
}

func runTray(flags *globalFlags) error {
	cfg, cat, err := loadConfig(flags)
	if err != nil {
		return err
	}

	// Initialize logger with configured level
	log := logging.NewWithLevel(cfg.LogLevel)
	log.Info().Int("languages", cat.Len()).Str("config", cfg.Path()).Msg("Polyglot Tray starting...")

	hotkeyAccel := cfg.PlatformHotkey()

	// macOS requires explicit microphone (and, for hotkeys, accessibility) approval
	if err := permissions.EnsurePermissions(log, hotkeyAccel != ""); err != nil {
		return err
	}

	svc, err := buildServices(cfg, log, true)
	if err != nil {
		return err
	}
	defer svc.Close()

	// Create tray UI first (we'll pass it to app)
	trayUI := tray.New(nil, cfg, log, Version, Commit)

	application := app.New(app.Config{
		Catalog:  cat,
		Recorder: svc.worker,
		Pipeline: svc.pipeline,
		Player:   svc.player,
		Devices:  svc.capture,
		View:     trayUI,
		Config:   cfg,
		Logger:   log,
	})

	// Set app reference in tray
	trayUI.SetApp(application)

	if hotkeyAccel != "" {
		hkManager, err := hotkey.New()
		if err != nil {
			log.Warn().Err(err).Msg("Global hotkey unavailable")
		} else {
			defer hkManager.Close()
			if err := hkManager.Register(hotkeyAccel, application.OnHotkey); err != nil {
				log.Warn().Err(err).Str("hotkey", hotkeyAccel).Msg("Failed to register hotkey")
			} else {
				log.Info().Str("hotkey", hotkeyAccel).Msg("Hotkey registered")
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start tray UI - MUST run on main thread
	if err := trayUI.Run(ctx); err != nil {
		return fmt.Errorf("tray: %w", err)
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
	return nil
}
