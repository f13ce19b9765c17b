package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgallion1/md2docx/internal/builder"
	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/docxwriter"
	"github.com/dgallion1/md2docx/internal/markup"
	"github.com/dgallion1/md2docx/internal/metrics"
	"github.com/dgallion1/md2docx/internal/style"
)

// Converter turns markdown source into documents.
type Converter struct {
	Styles *style.Registry
	Log    *slog.Logger

	// DefaultStyle applies when neither the caller nor the front matter
	// names a style.
	DefaultStyle string

	Metrics *metrics.Recorder
}

// NewConverter returns a converter over styles that falls back to
// style.DefaultName.
func NewConverter(styles *style.Registry, log *slog.Logger) *Converter {
	return &Converter{
		Styles:       styles,
		Log:          log,
		DefaultStyle: style.DefaultName,
	}
}

// Convert builds the document for src. An empty styleName defers to the
// front matter's style key, then to DefaultStyle.
func (c *Converter) Convert(ctx context.Context, src []byte, styleName string) (*doctree.Document, error) {
	start := time.Now()
	doc, label, err := c.convert(ctx, src, styleName)

	blocks := 0
	if doc != nil {
		blocks = len(doc.Blocks)
	}
	c.Metrics.ObserveConversion(label, Outcome(err), blocks, time.Since(start))
	return doc, err
}

// convert returns the document and the style label to record it under.
// The label is a registered profile name, or metrics.StyleUnknown when the
// style was never resolved.
func (c *Converter) convert(ctx context.Context, src []byte, styleName string) (*doctree.Document, string, error) {
	log := c.logger()

	// Phase 1: Front matter
	fm, body, err := markup.SplitFrontMatter(src)
	if err != nil {
		log.Warn("front matter rejected", "error", err)
		return nil, metrics.StyleUnknown, err
	}
	styleName = c.resolveStyle(styleName, fm.Style)
	log = log.With("style", styleName)

	// Phase 2: Style lookup, before any rendering work
	profile, err := c.Styles.Lookup(styleName)
	if err != nil {
		log.Warn("style lookup failed", "error", err)
		return nil, metrics.StyleUnknown, err
	}

	if err := ctx.Err(); err != nil {
		return nil, styleName, err
	}

	// Phase 3: Render markdown
	html, err := markup.Render(body)
	if err != nil {
		log.Error("render failed", "error", err)
		return nil, styleName, err
	}

	// Phase 4: Parse markup
	tree, err := markup.Parse(html)
	if err != nil {
		log.Error("parse failed", "error", err)
		return nil, styleName, err
	}

	if err := ctx.Err(); err != nil {
		return nil, styleName, err
	}

	// Phase 5: Build
	doc, err := builder.Build(tree, profile.Defaults())
	if err != nil {
		log.Warn("build failed", "error", err)
		return nil, styleName, err
	}
	doc.Meta = doctree.Meta{Title: fm.Title, Author: fm.Author, Subject: fm.Subject}

	log.Debug("converted document", "blocks", len(doc.Blocks), "bytes", len(src))
	return doc, styleName, nil
}

// ConvertToDocx converts src and returns the .docx package bytes.
func (c *Converter) ConvertToDocx(ctx context.Context, src []byte, styleName string) ([]byte, *doctree.Document, error) {
	doc, err := c.Convert(ctx, src, styleName)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := docxwriter.WriteTo(&buf, doc); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), doc, nil
}

// ConvertFile converts the markdown file in and saves the result to out.
// Nothing is written when any step fails.
func (c *Converter) ConvertFile(ctx context.Context, in, out, styleName string) error {
	src, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	doc, err := c.Convert(ctx, src, styleName)
	if err != nil {
		return err
	}
	if err := docxwriter.Save(doc, out); err != nil {
		return err
	}
	c.logger().Info("wrote document", "input", in, "output", out, "blocks", len(doc.Blocks))
	return nil
}

func (c *Converter) resolveStyle(explicit, frontMatter string) string {
	switch {
	case explicit != "":
		return explicit
	case frontMatter != "":
		return frontMatter
	}
	return c.DefaultStyle
}

func (c *Converter) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

// Outcome classifies a conversion error for metrics and status codes.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, style.ErrNotFound):
		return metrics.OutcomeStyleNotFound
	case errors.Is(err, markup.ErrInvalidFrontMatter):
		return metrics.OutcomeInvalidFrontMatter
	case errors.Is(err, builder.ErrUnsupportedMarkup):
		return metrics.OutcomeUnsupportedMarkup
	case errors.Is(err, builder.ErrStructuralViolation):
		return metrics.OutcomeStructuralViolation
	}
	return metrics.OutcomeError
}
