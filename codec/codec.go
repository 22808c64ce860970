// Package codec encodes the JSON reports written next to batch outputs and
// by the command line tool.
package codec

import (
	"fmt"

	gojson "github.com/goccy/go-json"
)

// Codec encodes and decodes report values.
// Implementations must be safe for concurrent use.
type Codec interface {
	MarshalIndent(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Default is the codec used for reports.
var Default Codec = GoJSON{}

// GoJSON is a JSON codec backed by github.com/goccy/go-json.
type GoJSON struct{}

// MarshalIndent encodes v as two-space indented JSON.
func (GoJSON) MarshalIndent(v any) ([]byte, error) { return gojson.MarshalIndent(v, "", "  ") }

// Unmarshal decodes the JSON data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// MarshalReport encodes v with Default in the form reports are stored in:
// indented and terminated by a newline.
func MarshalReport(v any) ([]byte, error) {
	data, err := Default.MarshalIndent(v)
	if err != nil {
		return nil, fmt.Errorf("codec: report: %w", err)
	}
	return append(data, '\n'), nil
}
