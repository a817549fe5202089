package tray

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/getlantern/systray"
	"github.com/ncruces/zenity"
	"github.com/rs/zerolog"

	"github.com/petems/polyglot-tray/internal/app"
	"github.com/petems/polyglot-tray/internal/capture"
	"github.com/petems/polyglot-tray/internal/config"
	"github.com/petems/polyglot-tray/internal/logging"
)

// Menu titles are cut to this many runes.
const maxTitle = 60

var _ app.View = (*UI)(nil)

type UI struct {
	app     *app.App
	cfg     *config.Config
	version string
	commit  string
	log     zerolog.Logger

	// Menu items
	mLanguages  *systray.MenuItem
	mStart      *systray.MenuItem
	mStatus     *systray.MenuItem
	mTranscript *systray.MenuItem
	mLines      []*systray.MenuItem
	mSave       *systray.MenuItem
	mCopy       *systray.MenuItem
	mDevices    *systray.MenuItem

	langItems map[string]*systray.MenuItem

	// View state, applied once the menu exists.
	mu           sync.Mutex
	ready        bool
	startEnabled bool
	saveEnabled  bool
	status       string
	transcript   string
	translations string
}

func New(application *app.App, cfg *config.Config, log zerolog.Logger, version, commit string) *UI {
	return &UI{
		app:          application,
		cfg:          cfg,
		version:      version,
		commit:       commit,
		log:          log,
		langItems:    make(map[string]*systray.MenuItem),
		startEnabled: true,
	}
}

// SetApp sets the app reference (for circular dependency resolution)
func (u *UI) SetApp(application *app.App) {
	u.app = application
}

// Run blocks on the systray loop. It must be called from the main thread.
func (u *UI) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		systray.Quit()
	}()
	systray.Run(u.onReady, u.onExit)
	return nil
}

// View implementation

func (u *UI) SetStartEnabled(enabled bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.startEnabled = enabled
	if u.ready {
		setEnabled(u.mStart, enabled)
	}
}

func (u *UI) SetSaveEnabled(enabled bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.saveEnabled = enabled
	if u.ready {
		setEnabled(u.mSave, enabled)
		setEnabled(u.mCopy, enabled)
	}
}

func (u *UI) SetStatus(status string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = status
	if u.ready {
		u.applyStatus()
	}
}

func (u *UI) SetTranscript(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.transcript = text
	if u.ready {
		u.applyTranscript()
	}
}

func (u *UI) SetTranslations(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.translations = text
	if u.ready {
		u.applyTranslations()
	}
}

func (u *UI) onReady() {
	systray.SetTooltip("Speak, translate and listen")

	// Build menu
	u.mLanguages = systray.AddMenuItem("Target Languages", "Languages to translate into")
	u.buildLanguageMenu()

	u.mStart = systray.AddMenuItem("Start Recording", "Record one phrase")
	systray.AddSeparator()

	u.mStatus = systray.AddMenuItem("", "Status")
	u.mStatus.Disable()
	u.mTranscript = systray.AddMenuItem("", "Transcript")
	u.mTranscript.Disable()
	// One line per language at most
	for i := 0; i < u.app.Catalog().Len(); i++ {
		item := systray.AddMenuItem("", "Translation")
		item.Disable()
		item.Hide()
		u.mLines = append(u.mLines, item)
	}
	systray.AddSeparator()

	u.mSave = systray.AddMenuItem("Save Audio…", "Move the generated audio files to a folder")
	u.mCopy = systray.AddMenuItem("Copy Translations", "Copy the translations to the clipboard")
	systray.AddSeparator()

	u.mDevices = systray.AddMenuItem("Microphone", "Select audio device")
	u.buildDeviceMenu()

	systray.AddSeparator()
	mLogs := systray.AddMenuItem("Open Logs", "View application logs")
	mAbout := systray.AddMenuItem("About", "About Polyglot Tray")
	mQuit := systray.AddMenuItem("Quit", "Exit application")

	u.mu.Lock()
	u.ready = true
	setEnabled(u.mStart, u.startEnabled)
	setEnabled(u.mSave, u.saveEnabled)
	setEnabled(u.mCopy, u.saveEnabled)
	u.applyStatus()
	u.applyTranscript()
	u.applyTranslations()
	u.mu.Unlock()

	// Event loop
	go u.handleEvents(mLogs, mAbout, mQuit)
}

func (u *UI) handleEvents(mLogs, mAbout, mQuit *systray.MenuItem) {
	for {
		select {
		case <-u.mStart.ClickedCh:
			u.startRecording()
		case <-u.mSave.ClickedCh:
			u.saveAudio()
		case <-u.mCopy.ClickedCh:
			if err := u.app.CopyTranslations(); err != nil {
				u.log.Warn().Err(err).Msg("Copy failed")
			}
		case <-mLogs.ClickedCh:
			u.openLogs()
		case <-mAbout.ClickedCh:
			u.showAbout()
		case <-mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

func (u *UI) startRecording() {
	err := u.app.StartRecording(u.app.Selected())
	switch {
	case errors.Is(err, app.ErrSessionRunning):
		u.log.Debug().Msg("Start ignored, session running")
	case err != nil:
		u.log.Error().Err(err).Msg("Failed to start recording")
	}
}

func (u *UI) saveAudio() {
	folder, err := zenity.SelectFile(zenity.Title("Select Folder"), zenity.Directory())
	if errors.Is(err, zenity.ErrCanceled) {
		return
	}
	if err != nil {
		u.log.Error().Err(err).Msg("Folder picker failed")
		return
	}
	u.app.SaveAudio(folder)
}

func (u *UI) buildLanguageMenu() {
	checked := make(map[string]bool)
	for _, name := range u.app.Selected() {
		checked[name] = true
	}

	for _, lang := range u.app.Catalog().Languages() {
		item := u.mLanguages.AddSubMenuItemCheckbox(lang.Name, lang.Code, checked[lang.Name])
		u.langItems[lang.Name] = item

		go func(name string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				if menuItem.Checked() {
					menuItem.Uncheck()
				} else {
					menuItem.Check()
				}
				if err := u.app.SetSelected(u.checkedLanguages()); err != nil {
					u.log.Error().Err(err).Msg("Failed to save language selection")
				}
				u.log.Debug().Str("language", name).Bool("checked", menuItem.Checked()).Msg("Toggled language")
			}
		}(lang.Name, item)
	}
}

func (u *UI) checkedLanguages() []string {
	var names []string
	for name, item := range u.langItems {
		if item.Checked() {
			names = append(names, name)
		}
	}
	return names
}

func (u *UI) buildDeviceMenu() {
	// Get devices from app
	devices, err := u.app.ListDevices()
	if err != nil {
		u.log.Error().Err(err).Msg("Failed to list audio devices")
		return
	}

	deviceItems := make(map[string]*systray.MenuItem)

	for _, dev := range devices {
		item := u.mDevices.AddSubMenuItem(dev.Name, "")
		if dev.ID == u.cfg.Audio.DeviceID || (u.cfg.Audio.DeviceID == "" && dev.Default) {
			item.Check()
		}
		deviceItems[dev.ID] = item

		go func(deviceID, deviceName string, menuItem *systray.MenuItem) {
			for {
				<-menuItem.ClickedCh
				if err := u.app.SetDevice(deviceID); err != nil {
					u.log.Warn().Err(err).Str("device", deviceName).Msg("Cannot change audio device")
					continue
				}
				// Uncheck all other items
				for id, itm := range deviceItems {
					if id != deviceID {
						itm.Uncheck()
					}
				}
				menuItem.Check()
				u.log.Info().Str("device", deviceName).Msg("Changed audio device")
			}
		}(dev.ID, dev.Name, item)
	}
}

func (u *UI) openLogs() {
	path := logging.Path()
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("explorer", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}
	if err := cmd.Start(); err != nil {
		u.log.Error().Err(err).Str("path", path).Msg("Failed to open logs")
	}
}

func (u *UI) showAbout() {
	text := fmt.Sprintf("Polyglot Tray %s (%s)\nSpeak, translate and listen", u.version, u.commit)
	if err := zenity.Info(text, zenity.Title("About Polyglot Tray")); err != nil && !errors.Is(err, zenity.ErrCanceled) {
		u.log.Warn().Err(err).Msg("About dialog failed")
	}
}

func (u *UI) onExit() {
	u.log.Info().Msg("Tray closed")
}

// apply* must be called with u.mu held and the menu built.

func (u *UI) applyStatus() {
	systray.SetTitle(fmt.Sprintf("🎤 %s", emojiForStatus(u.status)))
	u.mStatus.SetTitle(truncate(u.status, maxTitle))
	if u.status == "" {
		u.mStatus.Hide()
	} else {
		u.mStatus.Show()
	}
}

func (u *UI) applyTranscript() {
	u.mTranscript.SetTitle(truncate(u.transcript, maxTitle))
	u.mTranscript.SetTooltip(u.transcript)
	if u.transcript == "" {
		u.mTranscript.Hide()
	} else {
		u.mTranscript.Show()
	}
}

func (u *UI) applyTranslations() {
	lines := splitLines(u.translations)
	for i, item := range u.mLines {
		if i < len(lines) {
			item.SetTitle(truncate(lines[i], maxTitle))
			item.SetTooltip(lines[i])
			item.Show()
		} else {
			item.Hide()
		}
	}
}

func setEnabled(item *systray.MenuItem, enabled bool) {
	if enabled {
		item.Enable()
	} else {
		item.Disable()
	}
}

// emojiForStatus returns the appropriate status emoji
func emojiForStatus(status string) string {
	switch {
	case status == capture.StatusListening:
		return "🔴" // Red - recording
	case status == capture.StatusRecognizing, status == app.StatusTranslating:
		return "🟡" // Yellow - waiting on the services
	case status == capture.StatusUnintelligible, strings.HasPrefix(status, "Error: "):
		return "⚪️" // White - error
	default:
		return "🟢" // Green - ready/idle
	}
}

func splitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
