// Package render formats roster reports, personalization diffs and
// resolution explanations for output.
package render

import (
	"fmt"

	"github.com/ppiankov/medfactors/internal/model"
)

// Renderer formats a Report into bytes for output.
type Renderer interface {
	Render(report *model.Report) ([]byte, error)
}

// NewRenderer returns a Renderer for the given format string.
// Supported formats: "json" (default), "md".
func NewRenderer(format string) (Renderer, error) {
	switch format {
	case "json", "":
		return &jsonRenderer{}, nil
	case "md", "markdown":
		return &markdownRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q: supported formats are json, md", format)
	}
}

// Extension returns the file extension for a format
func Extension(format string) string {
	switch format {
	case "md", "markdown":
		return ".md"
	default:
		return ".json"
	}
}
