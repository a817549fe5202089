package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/petems/polyglot-tray/internal/config"
)

func TestSplitText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want []string
	}{
		{"short", "Bonjour tout le monde.", 100, []string{"Bonjour tout le monde."}},
		{"merges sentences", "Hola. ¿Qué tal?", 100, []string{"Hola. ¿Qué tal?"}},
		{"splits on punctuation", "one two, three four.", 10, []string{"one two,", "three", "four."}},
		{"long word", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"only punctuation", "...", 100, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitText(tt.in, tt.max)
			if len(got) != len(tt.want) {
				t.Fatalf("splitText = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("part %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitTextRespectsLimit(t *testing.T) {
	text := strings.Repeat("palabra larga sin puntuación ", 20)
	for _, p := range splitText(text, googleMaxChars) {
		if n := utf8.RuneCountInString(p); n > googleMaxChars {
			t.Errorf("part has %d runes: %q", n, p)
		}
	}
}

func TestGoogleSynthesizeConcatenatesParts(t *testing.T) {
	var langs []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		langs = append(langs, q.Get("tl"))
		fmt.Fprintf(w, "[mp3 %s/%s]", q.Get("idx"), q.Get("total"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	text := strings.Repeat("a", 60) + ". " + strings.Repeat("b", 60) + "."
	if err := NewGoogle(srv.URL).Synthesize(context.Background(), text, "fr", &buf); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if buf.String() != "[mp3 0/2][mp3 1/2]" {
		t.Errorf("body = %q", buf.String())
	}
	if len(langs) != 2 || langs[0] != "fr" {
		t.Errorf("langs = %v", langs)
	}
}

func TestGoogleSynthesizeHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewGoogle(srv.URL).Synthesize(context.Background(), "hola", "es", &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v, want HTTP 429", err)
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	var gotPath, gotKey string
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		json.NewDecoder(r.Body).Decode(&payload)
		w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	el := NewElevenLabs("secret", srv.URL, "", "alloy")
	if err := el.Synthesize(context.Background(), "hallo", "de", &buf); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if buf.String() != "ID3audio" {
		t.Errorf("body = %q", buf.String())
	}
	if gotPath != "/"+elevenLabsVoice {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Errorf("key = %q", gotKey)
	}
	if payload["text"] != "hallo" || payload["model_id"] != elevenLabsModel {
		t.Errorf("payload = %v", payload)
	}
}

func TestOpenAISynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3speech"))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	if err := NewOpenAI("key", srv.URL+"/v1", "", "").Synthesize(context.Background(), "hola", "es", &buf); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if buf.String() != "ID3speech" {
		t.Errorf("body = %q", buf.String())
	}
}

func TestNewProviders(t *testing.T) {
	if _, err := New(config.TTSConfig{Provider: "google"}, config.Keys{}); err != nil {
		t.Errorf("google: %v", err)
	}
	if _, err := New(config.TTSConfig{Provider: "elevenlabs"}, config.Keys{}); err == nil {
		t.Error("expected error without ELEVENLABS_API_KEY")
	}
	if _, err := New(config.TTSConfig{Provider: "robot"}, config.Keys{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
