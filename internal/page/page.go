// Package page wraps generated index pages in the mirror's common layout: stylesheet, logo bar, and main-content box.
package page

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed layout.html
var layout string

// Must parses content as the "content" template of a fresh copy of the layout, panicking on a parse error.
// Call it once per page kind, at package init.
func Must(content string) *template.Template {
	t := template.Must(template.New("layout").Parse(layout))
	template.Must(t.New("content").Parse(content))
	return t
}

// Render executes t with body, then writes the whole page to w.
// Nothing reaches w unless the template executes cleanly.
func Render(w io.Writer, t *template.Template, siteName string, body any) error {
	var buf bytes.Buffer
	data := struct {
		SiteName string
		Body     any
	}{siteName, body}
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}
