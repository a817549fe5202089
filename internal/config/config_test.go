package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Audio.ListenTimeout.Std() != 5*time.Second {
		t.Errorf("listen timeout = %v, want 5s", cfg.Audio.ListenTimeout.Std())
	}
	if cfg.TTS.Provider != "google" {
		t.Errorf("tts provider = %q, want google", cfg.TTS.Provider)
	}
}

func TestLoadFromOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"log_level":"debug","audio":{"listen_timeout":"3s"},"translate":{"provider":"openai"}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Audio.ListenTimeout.Std() != 3*time.Second {
		t.Errorf("listen timeout = %v, want 3s", cfg.Audio.ListenTimeout.Std())
	}
	// Fields absent from the file keep their defaults.
	if cfg.Audio.Calibration.Std() != time.Second {
		t.Errorf("calibration = %v, want 1s", cfg.Audio.Calibration.Std())
	}
	if cfg.Translate.Provider != "openai" {
		t.Errorf("translate provider = %q", cfg.Translate.Provider)
	}
}

func TestLoadFromRejectsBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"audio":{"listen_timeout":5}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Fatal("expected error for numeric duration")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Selected = []string{"French", "Spanish"}
	cfg.Audio.PauseThreshold = Duration(time.Second)
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Selected) != 2 || got.Selected[0] != "French" {
		t.Errorf("selected = %v", got.Selected)
	}
	if got.Audio.PauseThreshold.Std() != time.Second {
		t.Errorf("pause threshold = %v", got.Audio.PauseThreshold.Std())
	}
}
