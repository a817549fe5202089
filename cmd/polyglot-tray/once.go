package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/petems/polyglot-tray/internal/app"
	"github.com/petems/polyglot-tray/internal/logging"
)

// terminalView prints view updates as lines.
type terminalView struct {
	mu  sync.Mutex
	out io.Writer
}

func (v *terminalView) println(s string) {
	if s == "" {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, s)
}

func (v *terminalView) SetStartEnabled(bool) {}
func (v *terminalView) SetSaveEnabled(bool)  {}

func (v *terminalView) SetStatus(status string)   { v.println(status) }
func (v *terminalView) SetTranscript(text string) { v.println(text) }

func (v *terminalView) SetTranslations(text string) {
	v.println(strings.TrimRight(text, "\n"))
}

func newOnceCmd(flags *globalFlags) *cobra.Command {
	var (
		languages []string
		noPlay    bool
		saveTo    string
	)

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Record one phrase and translate it without the tray",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, err := loadConfig(flags)
			if err != nil {
				return err
			}
			log := logging.NewWithLevel(cfg.LogLevel)

			if len(languages) == 0 {
				languages = cfg.Selected
			}

			svc, err := buildServices(cfg, log, !noPlay)
			if err != nil {
				return err
			}
			defer svc.Close()

			view := &terminalView{out: cmd.OutOrStdout()}
			application := app.New(app.Config{
				Catalog:  cat,
				Recorder: svc.worker,
				Pipeline: svc.pipeline,
				Player:   svc.player,
				Devices:  svc.capture,
				View:     view,
				Config:   cfg,
				Logger:   log,
			})

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := application.StartRecording(languages); err != nil {
				return err
			}
			if err := application.Wait(ctx); err != nil {
				return application.Shutdown(context.Background())
			}

			sess, ok := application.Session()
			if !ok || len(sess.Results) == 0 {
				return nil
			}
			if saveTo != "" {
				application.SaveAudio(saveTo)
			}
			if svc.player != nil {
				return svc.player.Wait(ctx)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&languages, "language", "l", nil, "target language name, repeatable (default: saved selection)")
	cmd.Flags().BoolVar(&noPlay, "no-play", false, "do not play the first translation")
	cmd.Flags().StringVar(&saveTo, "save", "", "move the generated audio files to this folder")
	return cmd
}
