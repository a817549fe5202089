package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	googleTTSURL = "https://translate.google.com/translate_tts"
	// The endpoint rejects longer inputs.
	googleMaxChars = 100
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36"
)

// Google uses the Google Translate text-to-speech endpoint. Long text is
// sent in parts and the MP3 responses are concatenated.
type Google struct {
	endpoint string
	client   *http.Client
}

// NewGoogle builds a client. An empty endpoint uses the public service.
func NewGoogle(endpoint string) *Google {
	if endpoint == "" {
		endpoint = googleTTSURL
	}
	return &Google{endpoint: endpoint, client: &http.Client{Timeout: 30 * time.Second}}
}

func (g *Google) Synthesize(ctx context.Context, text, lang string, w io.Writer) error {
	parts := splitText(text, googleMaxChars)
	if len(parts) == 0 {
		return fmt.Errorf("no text to speak")
	}

	for i, part := range parts {
		q := url.Values{}
		q.Set("ie", "UTF-8")
		q.Set("client", "tw-ob")
		q.Set("tl", lang)
		q.Set("q", part)
		q.Set("total", strconv.Itoa(len(parts)))
		q.Set("idx", strconv.Itoa(i))
		q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(part)))

		if err := g.fetch(ctx, g.endpoint+"?"+q.Encode(), w); err != nil {
			return fmt.Errorf("google tts part %d/%d: %w", i+1, len(parts), err)
		}
	}
	return nil
}

func (g *Google) fetch(ctx context.Context, u string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := g.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// splitText breaks text into parts of at most max runes, preferring
// punctuation, then spaces, and merging short neighbours.
func splitText(text string, max int) []string {
	var pieces []string
	for _, sentence := range splitAfterPunct(text) {
		if utf8.RuneCountInString(sentence) <= max {
			pieces = append(pieces, sentence)
			continue
		}
		pieces = append(pieces, splitWords(sentence, max)...)
	}

	var parts []string
	for _, p := range pieces {
		if n := len(parts); n > 0 && utf8.RuneCountInString(parts[n-1])+1+utf8.RuneCountInString(p) <= max {
			parts[n-1] += " " + p
			continue
		}
		parts = append(parts, p)
	}
	return parts
}

// isPunct reports closing punctuation; text is split after these.
func isPunct(r rune) bool {
	return strings.ContainsRune(".,;:!?…。、，！？；：\n", r)
}

func splitAfterPunct(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if isPunct(r) {
			end := i + utf8.RuneLen(r)
			if s := strings.TrimSpace(text[start:end]); s != "" && !onlyPunct(s) {
				out = append(out, s)
			}
			start = end
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" && !onlyPunct(s) {
		out = append(out, s)
	}
	return out
}

func onlyPunct(s string) bool {
	for _, r := range s {
		if !isPunct(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func splitWords(s string, max int) []string {
	var out []string
	cur := ""
	for _, word := range strings.Fields(s) {
		for utf8.RuneCountInString(word) > max {
			if cur != "" {
				out = append(out, cur)
				cur = ""
			}
			r := []rune(word)
			out = append(out, string(r[:max]))
			word = string(r[max:])
		}
		switch {
		case cur == "":
			cur = word
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(word) <= max:
			cur += " " + word
		default:
			out = append(out, cur)
			cur = word
		}
	}
	if cur != "" {
		out = append(out, cur)
	}
	return out
}
