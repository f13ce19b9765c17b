package markup

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.Strikethrough),
)

// Render converts markdown source to HTML. Strikethrough (~~text~~) renders
// as <del>; raw HTML in the source is omitted.
func Render(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
