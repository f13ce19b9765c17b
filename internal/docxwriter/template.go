package docxwriter

import (
	"archive/zip"
	"bytes"
	"embed"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"

	"github.com/dgallion1/md2docx/internal/doctree"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("parts").
		Funcs(template.FuncMap{"xml": xmlEscape}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// parts lists the package entries of the template and the file each one is
// rendered from.
var parts = []struct {
	name string
	tmpl string
}{
	{"[Content_Types].xml", "content_types.xml.tmpl"},
	{"_rels/.rels", "rels.xml.tmpl"},
	{"docProps/core.xml", "core.xml.tmpl"},
	{"word/_rels/document.xml.rels", "document.xml.rels.tmpl"},
	{"word/document.xml", "document.xml.tmpl"},
	{"word/styles.xml", "styles.xml.tmpl"},
	{"word/numbering.xml", "numbering.xml.tmpl"},
}

// buildTemplate renders an empty package whose styles, numbering and
// core properties reflect doc.
func buildTemplate(doc *doctree.Document) ([]byte, error) {
	data := newTemplateData(doc)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p.name, err)
		}
		if err := templates.ExecuteTemplate(w, p.tmpl, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close template: %w", err)
	}
	return buf.Bytes(), nil
}

func xmlEscape(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}
