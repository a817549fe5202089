package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const myMemoryURL = "https://api.mymemory.translated.net/get"

// MyMemory is the free MyMemory translation API.
type MyMemory struct {
	endpoint string
	source   string
	email    string
	client   *http.Client
}

// NewMyMemory builds a client translating from source (default "en").
// An empty endpoint uses the public API.
func NewMyMemory(endpoint, source, email string) *MyMemory {
	if endpoint == "" {
		endpoint = myMemoryURL
	}
	if source == "" {
		source = "en"
	}
	return &MyMemory{
		endpoint: endpoint,
		source:   source,
		email:    email,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (m *MyMemory) Translate(ctx context.Context, text, target string) (string, error) {
	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", m.source+"|"+target)
	if m.email != "" {
		q.Set("de", m.email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("mymemory request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mymemory error (HTTP %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		ResponseData struct {
			TranslatedText string `json:"translatedText"`
		} `json:"responseData"`
		ResponseStatus  json.Number `json:"responseStatus"`
		ResponseDetails string      `json:"responseDetails"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode mymemory: %w", err)
	}

	// The API reports quota and language errors in the body with HTTP 200.
	if parsed.ResponseStatus != "" && parsed.ResponseStatus != "200" {
		return "", fmt.Errorf("mymemory error %s: %s", parsed.ResponseStatus, parsed.ResponseDetails)
	}
	out := html.UnescapeString(parsed.ResponseData.TranslatedText)
	if out == "" {
		return "", fmt.Errorf("mymemory returned an empty translation")
	}
	return out, nil
}
