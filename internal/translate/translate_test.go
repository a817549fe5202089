package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/petems/polyglot-tray/internal/config"
)

func TestMyMemoryTranslate(t *testing.T) {
	var gotQ, gotPair string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQ = r.URL.Query().Get("q")
		gotPair = r.URL.Query().Get("langpair")
		fmt.Fprint(w, `{"responseData":{"translatedText":"l&#39;eau"},"responseStatus":200,"responseDetails":""}`)
	}))
	defer srv.Close()

	out, err := NewMyMemory(srv.URL, "", "").Translate(context.Background(), "water", "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "l'eau" {
		t.Errorf("out = %q, want l'eau", out)
	}
	if gotQ != "water" || gotPair != "en|fr" {
		t.Errorf("q = %q langpair = %q", gotQ, gotPair)
	}
}

func TestMyMemoryStatusInBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"responseData":{"translatedText":"MYMEMORY WARNING"},"responseStatus":"403","responseDetails":"INVALID TARGET LANGUAGE"}`)
	}))
	defer srv.Close()

	_, err := NewMyMemory(srv.URL, "en", "").Translate(context.Background(), "hello", "xx")
	if err == nil {
		t.Fatal("expected error for responseStatus 403")
	}
}

func TestOpenAITranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":" bonjour\n"},"finish_reason":"stop"}]}`)
	}))
	defer srv.Close()

	out, err := NewOpenAI("key", srv.URL+"/v1", "").Translate(context.Background(), "hello", "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "bonjour" {
		t.Errorf("out = %q, want bonjour", out)
	}
}

type echoTranslator struct{ calls int }

func (e *echoTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	e.calls++
	return target + ":" + text, nil
}

func TestLimited(t *testing.T) {
	inner := &echoTranslator{}
	if Limited(inner, 0) != Translator(inner) {
		t.Error("non-positive rate should return the translator unchanged")
	}

	lt := Limited(inner, 60)
	out, err := lt.Translate(context.Background(), "hi", "es")
	if err != nil || out != "es:hi" {
		t.Fatalf("Translate = %q, %v", out, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := lt.Translate(ctx, "hi", "es"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestNewProviders(t *testing.T) {
	if _, err := New(config.TranslateConfig{Provider: "mymemory"}, config.Keys{}); err != nil {
		t.Errorf("mymemory: %v", err)
	}
	if _, err := New(config.TranslateConfig{Provider: "openai"}, config.Keys{}); err == nil {
		t.Error("expected error without OPENAI_API_KEY")
	}
	if _, err := New(config.TranslateConfig{Provider: "babelfish"}, config.Keys{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
