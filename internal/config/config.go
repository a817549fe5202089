package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/joho/godotenv"
)

const appName = "polyglot-tray"

type Config struct {
	LogLevel      string          `json:"log_level"`
	Hotkey        string          `json:"hotkey"`
	HotkeyDarwin  string          `json:"hotkey_darwin"`
	LanguagesFile string          `json:"languages_file"`
	OutputDir     string          `json:"output_dir"`
	Audio         AudioConfig     `json:"audio"`
	Speech        SpeechConfig    `json:"speech"`
	Translate     TranslateConfig `json:"translate"`
	TTS           TTSConfig       `json:"tts"`
	Selected      []string        `json:"selected"` // checked language names, in catalog order

	path string
}

type AudioConfig struct {
	DeviceID       string   `json:"device_id"`
	SampleRate     int      `json:"sample_rate"`
	ListenTimeout  Duration `json:"listen_timeout"`
	Calibration    Duration `json:"calibration"`
	PauseThreshold Duration `json:"pause_threshold"`
	PhraseLimit    Duration `json:"phrase_limit"` // 0 means unlimited
}

type SpeechConfig struct {
	Provider string `json:"provider"` // "openai" or "deepgram"
	Model    string `json:"model"`
	Language string `json:"language"` // "auto", "en", etc.
}

type TranslateConfig struct {
	Provider          string `json:"provider"` // "mymemory" or "openai"
	SourceLanguage    string `json:"source_language"`
	Model             string `json:"model"`
	RequestsPerMinute int    `json:"requests_per_minute"` // 0 disables pacing
	Email             string `json:"email"`               // raises the MyMemory daily quota
}

type TTSConfig struct {
	Provider string `json:"provider"` // "google", "openai" or "elevenlabs"
	Model    string `json:"model"`
	Voice    string `json:"voice"`
}

// Duration is a time.Duration that reads and writes as "5s" in JSON.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"5s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		Hotkey:        "Alt+Space",
		HotkeyDarwin:  "Ctrl+Space",
		LanguagesFile: "language_codes.json",
		OutputDir:     ".",
		Audio: AudioConfig{
			DeviceID:       "",
			SampleRate:     16000,
			ListenTimeout:  Duration(5 * time.Second),
			Calibration:    Duration(time.Second),
			PauseThreshold: Duration(800 * time.Millisecond),
			PhraseLimit:    0,
		},
		Speech: SpeechConfig{
			Provider: "openai",
			Model:    "whisper-1",
			Language: "auto",
		},
		Translate: TranslateConfig{
			Provider:          "mymemory",
			SourceLanguage:    "en",
			Model:             "gpt-4o-mini",
			RequestsPerMinute: 0,
		},
		TTS: TTSConfig{
			Provider: "google",
			Model:    "tts-1",
			Voice:    "alloy",
		},
	}
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	return LoadFrom(configPath())
}

// LoadFrom reads the config at path, overlaying it on the defaults.
// A missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		path = configPath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	if c.path == "" {
		return configPath()
	}
	return c.path
}

// PlatformHotkey returns the appropriate hotkey for the current platform
func (c *Config) PlatformHotkey() string {
	if runtime.GOOS == "darwin" && c.HotkeyDarwin != "" {
		return c.HotkeyDarwin
	}
	return c.Hotkey
}

// Keys holds the cloud API credentials.
type Keys struct {
	OpenAI     string
	Deepgram   string
	ElevenLabs string
}

// LoadKeys reads API keys from the environment, after loading any .env
// files found in the working directory and the config directory.
func LoadKeys() Keys {
	for _, f := range []string{".env", filepath.Join(filepath.Dir(configPath()), ".env")} {
		if _, err := os.Stat(f); err == nil {
			// Existing environment variables win over the file.
			_ = godotenv.Load(f)
		}
	}
	return Keys{
		OpenAI:     os.Getenv("OPENAI_API_KEY"),
		Deepgram:   os.Getenv("DEEPGRAM_API_KEY"),
		ElevenLabs: os.Getenv("ELEVENLABS_API_KEY"),
	}
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, appName, "config.json")
}
