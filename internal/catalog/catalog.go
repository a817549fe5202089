// Package catalog holds the display-name to service-code table of the
// languages a user can translate into.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrEmpty is returned when the resource holds no languages.
var ErrEmpty = errors.New("language catalog is empty")

// Language is one selectable target language.
type Language struct {
	Name string `json:"name"` // e.g. "French"
	Code string `json:"code"` // e.g. "fr"
}

// Catalog is read-only once loaded.
type Catalog struct {
	langs  []Language
	byName map[string]string
}

// Load reads a JSON object of name -> code from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read language catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse decodes the catalog keeping the order of the keys in data.
func Parse(data []byte) (*Catalog, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("malformed language catalog: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("malformed language catalog: expected object, got %v", tok)
	}

	c := &Catalog{byName: make(map[string]string)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("malformed language catalog: %w", err)
		}
		name := tok.(string) // object keys are always strings

		var code string
		if err := dec.Decode(&code); err != nil {
			return nil, fmt.Errorf("language %q: code must be a string: %w", name, err)
		}
		if name == "" || code == "" {
			return nil, fmt.Errorf("language %q: empty name or code", name)
		}
		if _, dup := c.byName[name]; dup {
			return nil, fmt.Errorf("language %q listed twice", name)
		}
		c.byName[name] = code
		c.langs = append(c.langs, Language{Name: name, Code: code})
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("malformed language catalog: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("malformed language catalog: trailing data")
	}
	if len(c.langs) == 0 {
		return nil, ErrEmpty
	}
	return c, nil
}

// Languages returns the entries in resource order.
func (c *Catalog) Languages() []Language {
	out := make([]Language, len(c.langs))
	copy(out, c.langs)
	return out
}

func (c *Catalog) Len() int { return len(c.langs) }

// Code looks up the service code for a display name.
func (c *Catalog) Code(name string) (string, bool) {
	code, ok := c.byName[name]
	return code, ok
}

// Codes maps an ordered selection of names to their codes, keeping the order.
func (c *Catalog) Codes(names []string) ([]string, error) {
	codes := make([]string, 0, len(names))
	for _, n := range names {
		code, ok := c.byName[n]
		if !ok {
			return nil, fmt.Errorf("unknown language %q", n)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
