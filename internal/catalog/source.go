package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a catalog row encoding
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHTML Format = "html"
)

// ErrUnsupportedFormat is returned for unknown catalog encodings
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

//go:embed data/factors.json
var builtinRows []byte

// BuiltinSource returns the raw bytes of the embedded sample dataset
func BuiltinSource() []byte {
	return builtinRows
}

// ParseFormat converts a config/flag value to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// DetectFormat picks a format from the file extension, falling back to
// sniffing the content.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".html", ".htm":
		return FormatHTML
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")), bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatHTML
	default:
		return FormatYAML
	}
}

// DecodeJSON decodes a JSON array of rows. Only a document that is not an
// array fails; an element that does not decode as a row is kept as a
// malformed row for the builder to drop.
func DecodeJSON(data []byte) ([]Row, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode json rows: %w", err)
	}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		var row Row
		if err := json.Unmarshal(item, &row); err != nil {
			row = Row{malformed: true}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DecodeYAML decodes a YAML sequence of rows, with the same per-row
// tolerance as DecodeJSON.
func DecodeYAML(data []byte) ([]Row, error) {
	var items []yaml.Node
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode yaml rows: %w", err)
	}
	rows := make([]Row, 0, len(items))
	for i := range items {
		var row Row
		if err := items[i].Decode(&row); err != nil {
			row = Row{malformed: true}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Decode decodes rows in the given format
func Decode(data []byte, format Format) ([]Row, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML:
		return DecodeYAML(data)
	case FormatHTML:
		return DecodeHTMLTable(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// ReadFile reads a catalog source file. An empty path selects the
// embedded dataset.
func ReadFile(path string) ([]byte, error) {
	if path == "" {
		return builtinRows, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return data, nil
}
