// Package docxwriter serializes a document model to a .docx package.
//
// Styles, list numbering and core properties are rendered into a template
// package first; paragraphs are then added through go-docx and the page
// geometry is written as the final section properties.
package docxwriter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/md2docx/internal/doctree"
)

// headerDistance is the distance of the header and footer from the page edge.
const headerDistance = 720

// Render builds the go-docx representation of doc.
func Render(doc *doctree.Document) (*docx.Docx, error) {
	tmpl, err := buildTemplate(doc)
	if err != nil {
		return nil, err
	}
	out, err := docx.Parse(bytes.NewReader(tmpl), int64(len(tmpl)))
	if err != nil {
		return nil, fmt.Errorf("load template: %w", err)
	}

	for _, b := range doc.Blocks {
		addBlock(out, b)
	}
	out.Document.Body.Items = append(out.Document.Body.Items, sectionProperties(doc.Defaults.Page))
	return out, nil
}

// WriteTo writes doc as a .docx package to w.
func WriteTo(w io.Writer, doc *doctree.Document) error {
	out, err := Render(doc)
	if err != nil {
		return err
	}
	if _, err := out.WriteTo(w); err != nil {
		return fmt.Errorf("write docx: %w", err)
	}
	return nil
}

// Save writes doc to path, replacing any existing file. The package is
// written to a temporary file in the same directory and renamed into place,
// so a failed save leaves path untouched.
func Save(doc *doctree.Document, path string) (err error) {
	out, err := Render(doc)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if _, err = out.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write docx: %w", err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

func addBlock(out *docx.Docx, b *doctree.Block) {
	p := out.AddParagraph()
	if b.Style != "" {
		p.Style(StyleID(b.Style))
	}
	for _, r := range b.Runs {
		addRun(p, r)
	}
}

func addRun(p *docx.Paragraph, r *doctree.Run) {
	run := p.AddText(r.Text)
	for _, c := range run.Children {
		if t, ok := c.(*docx.Text); ok {
			t.XMLSpace = "preserve"
		}
	}
	if r.Bold {
		run.Bold()
	}
	if r.Italic {
		run.Italic()
	}
	if r.Strike {
		run.Strike(true)
	}
	if r.PageBreak {
		run.Children = append(run.Children, &docx.BarterRabbet{Type: "page"})
	}
}

func sectionProperties(pg doctree.Page) *docx.SectPr {
	return &docx.SectPr{
		PgSz: &docx.PgSz{
			W: int(pg.Width),
			H: int(pg.Height),
		},
		PgMar: &docx.PgMar{
			Top:    int(pg.Top),
			Left:   int(pg.Left),
			Bottom: int(pg.Bottom),
			Right:  int(pg.Right),
			Header: headerDistance,
			Footer: headerDistance,
		},
	}
}
