/*
Package properties reads line-oriented key=value files such as key.properties
and Flutter's local.properties.

Lines are split on the first '='. Blank lines and lines starting with '#' or
'!' are comments. Keys are trimmed of surrounding whitespace, values are kept
verbatim. A non-comment line without '=' or with an empty key is rejected
with a *SyntaxError.
*/
package properties

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// SyntaxError reports a malformed line
type SyntaxError struct {
	File string
	Line int
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %q", e.File, e.Line, e.Msg, e.Text)
}

// Properties is a string mapping that remembers insertion order
type Properties struct {
	values map[string]string
	keys   []string
}

// New returns an empty mapping
func New() *Properties {
	return &Properties{values: make(map[string]string)}
}

// Load reads the properties file at path.
// A missing file is not an error and yields an empty mapping.
func Load(path string) (*Properties, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Debug("Properties file not found", "path", path)
		return New(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open properties file: %w", err)
	}
	defer f.Close()

	p, err := Parse(f, path)
	if err != nil {
		return nil, err
	}

	log.Debug("Loaded properties", "path", path, "keys", p.Len())
	return p, nil
}

// Parse reads properties from r. name is used in error messages.
func Parse(r io.Reader, name string) (*Properties, error) {
	p := New()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, &SyntaxError{File: name, Line: lineNo, Text: line, Msg: "missing '='"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, &SyntaxError{File: name, Line: lineNo, Text: line, Msg: "empty key"}
		}
		p.Set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return p, nil
}

// Set stores value under key. Later values replace earlier ones.
func (p *Properties) Set(key, value string) {
	if _, exists := p.values[key]; !exists {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value for key and whether it was present
func (p *Properties) Get(key string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// Lookup returns a pointer to a copy of the value, or nil when key is absent
func (p *Properties) Lookup(key string) *string {
	v, ok := p.Get(key)
	if !ok {
		return nil
	}
	return &v
}

// Keys returns the keys in the order they were first seen
func (p *Properties) Keys() []string {
	if p == nil {
		return nil
	}
	return append([]string(nil), p.keys...)
}

// Len returns the number of keys
func (p *Properties) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}
