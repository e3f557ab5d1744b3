// Package normalize extracts a human-readable reply from upstream completion
// payloads whose shape varies by provider.
package normalize

import (
	"bytes"
	"encoding/json"
)

// Shape is one of the payload shapes the normalizer recognizes:
// Output, ChoiceText, ChoiceMessage or Unknown.
type Shape interface {
	// Text returns the display string for the shape.
	Text() string

	shape()
}

// Output is a payload with a top-level "output" field.
type Output struct {
	Value json.RawMessage
}

// ChoiceText is a payload whose first choice carries a "text" field.
type ChoiceText struct {
	Value json.RawMessage
}

// ChoiceMessage is a payload whose first choice carries "message.content".
type ChoiceMessage struct {
	Value json.RawMessage
}

// Unknown is a payload with no recognized field. Raw is the whole payload.
type Unknown struct {
	Raw []byte
}

func (Output) shape()        {}
func (ChoiceText) shape()    {}
func (ChoiceMessage) shape() {}
func (Unknown) shape()       {}

func (s Output) Text() string        { return coerce(s.Value) }
func (s ChoiceText) Text() string    { return coerce(s.Value) }
func (s ChoiceMessage) Text() string { return coerce(s.Value) }

// Text serializes the whole payload. Invalid JSON is returned as-is.
func (s Unknown) Text() string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, s.Raw); err != nil {
		return string(s.Raw)
	}
	return buf.String()
}

// coerce returns JSON strings unquoted and any other value as compact JSON.
// null and missing values become "".
func coerce(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
