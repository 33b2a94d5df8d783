// Package notes renders job and day notes written in markdown.
package notes

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/Flyrell/shopweek/internal/plan"
)

// Raw HTML in notes is not passed through.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.Linkify,
		extension.Strikethrough,
		extension.TaskList,
		extension.Table,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// Render converts a markdown note to an HTML fragment.
func Render(src string) (string, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering note: %w", err)
	}
	return buf.String(), nil
}

// Rendered is a pinned job note with its HTML body.
type Rendered struct {
	plan.Note
	HTML string `json:"html"`
}

// RenderAll renders every note, keeping order.
func RenderAll(notes []plan.Note) ([]Rendered, error) {
	out := make([]Rendered, 0, len(notes))
	for _, n := range notes {
		body, err := Render(n.Text)
		if err != nil {
			return nil, fmt.Errorf("job '%s': %w", n.JobID, err)
		}
		out = append(out, Rendered{Note: n, HTML: body})
	}
	return out, nil
}
