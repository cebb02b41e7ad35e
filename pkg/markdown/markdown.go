package markdown

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// policy is built once; bluemonday policies are safe for concurrent use.
var policy = bluemonday.UGCPolicy()

// Render converts markdown source to sanitized HTML safe for direct display.
func Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return template.HTML(policy.SanitizeBytes(buf.Bytes())), nil
}
