// Package builder converts a markup tree into a document model.
//
// The walk visits elements depth-first in document order. Block quotes and
// lists push a paragraph style that new paragraphs and list items pick up;
// inline elements and tail text become runs on the current paragraph.
package builder

import (
	"strings"

	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/markup"
)

type builder struct {
	doc     *doctree.Document
	styles  styleStack
	depth   int            // Open ul/ol elements
	current *doctree.Block // Target for inline runs and tail text
}

// Build walks the children of root and returns the resulting document,
// created with the given defaults. The first unsupported tag or structural
// violation aborts the walk.
func Build(root *markup.Node, defaults doctree.Defaults) (*doctree.Document, error) {
	b := newBuilder(defaults)
	if err := b.walk(root.Children); err != nil {
		return nil, err
	}
	return b.doc, nil
}

func newBuilder(defaults doctree.Defaults) *builder {
	return &builder{
		doc:    doctree.New(defaults),
		styles: newStyleStack(),
	}
}

func (b *builder) walk(nodes []*markup.Node) error {
	for _, elem := range nodes {
		if err := b.enter(elem); err != nil {
			return err
		}
		if err := b.walk(elem.Children); err != nil {
			return err
		}
		b.leave(elem)

		if strings.TrimSpace(elem.Tail) == "" {
			continue
		}
		if b.current == nil {
			return &StructuralViolationError{Tag: elem.Tag, Reason: "text outside a paragraph"}
		}
		b.current.AddRun(&doctree.Run{Text: elem.Tail})
	}
	return nil
}

func (b *builder) enter(elem *markup.Node) error {
	if level := headingLevel(elem.Tag); level > 0 {
		b.doc.AddHeading(elem.Text, level)
		return nil
	}

	switch elem.Tag {
	case "blockquote":
		b.styles.push(quoteStyle)
	case "p", "li":
		b.current = b.doc.AddParagraph(elem.Text, b.styles.top())
	case "hr":
		return b.pageBreak()
	case "ul", "ol":
		if b.depth == MaxListDepth {
			return &StructuralViolationError{Tag: elem.Tag, Reason: "lists nested deeper than 3 levels"}
		}
		b.depth++
		b.styles.push(ListStyle(elem.Tag, b.depth))
	case "strong", "em", "del":
		if b.current == nil {
			return &StructuralViolationError{Tag: elem.Tag, Reason: "inline formatting outside a paragraph"}
		}
		b.current.AddRun(&doctree.Run{
			Text:   elem.Text,
			Bold:   elem.Tag == "strong",
			Italic: elem.Tag == "em",
			Strike: elem.Tag == "del",
		})
	default:
		return &UnsupportedMarkupError{Tag: elem.Tag}
	}
	return nil
}

func (b *builder) leave(elem *markup.Node) {
	switch elem.Tag {
	case "ul", "ol":
		b.depth--
		b.styles.pop()
		b.current = nil
	case "blockquote":
		b.styles.pop()
	case "p", "li":
		b.current = nil
	}
}

// pageBreak marks the last run of the last block with a page break.
func (b *builder) pageBreak() error {
	last := b.doc.LastBlock()
	if last == nil {
		return &StructuralViolationError{Tag: "hr", Reason: "page break before any content"}
	}
	if len(last.Runs) == 0 {
		last.AddRun(&doctree.Run{})
	}
	last.Runs[len(last.Runs)-1].PageBreak = true
	return nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}
