// Package format writes command results as JSON or EDN.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	JSON = "json"
	EDN  = "edn"
)

// Envelope is the shape every command prints: the payload under "data",
// optional metadata, and follow-up hints for the operator.
type Envelope struct {
	Data  any      `json:"data"`
	Meta  any      `json:"meta,omitempty"`
	Hints []string `json:"_hints,omitempty"`
}

// Valid reports whether name is a supported output format.
func Valid(name string) bool {
	switch normalize(name) {
	case JSON, EDN:
		return true
	}
	return false
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return JSON
	}
	return name
}

// Write renders v in the named format followed by a newline.
func Write(w io.Writer, v any, name string, pretty bool) error {
	switch normalize(name) {
	case JSON:
		return WriteJSON(w, v, pretty)
	case EDN:
		return WriteEDN(w, v, pretty)
	default:
		return fmt.Errorf("unknown format %q (expected json|edn)", name)
	}
}

// WriteJSON writes strict JSON. Extra information belongs in Envelope.Meta or
// Envelope.Hints, never in free text around the document.
func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
