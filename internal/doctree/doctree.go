package doctree

import "strings"

// Document is the in-memory model of a word-processor document.
type Document struct {
	Defaults Defaults // Document-level formatting, set once before blocks are added
	Meta     Meta     // Package core properties
	Blocks   []*Block // Headings and paragraphs in document order
}

// New returns an empty document carrying the given defaults.
func New(defaults Defaults) *Document {
	return &Document{Defaults: defaults}
}

// BlockKind distinguishes headings from ordinary paragraphs.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
)

// Block is a paragraph or heading with a named paragraph style.
type Block struct {
	Kind  BlockKind
	Level int    // Heading level 1..6, zero for paragraphs
	Style string // Paragraph style name, empty for the default style
	Runs  []*Run
}

// Run is a contiguous span of text sharing one formatting.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	Strike    bool
	PageBreak bool // Forced page break after Text
}

// AddHeading appends a heading block whose only run is text.
func (d *Document) AddHeading(text string, level int) *Block {
	b := &Block{
		Kind:  KindHeading,
		Level: level,
		Style: HeadingStyle(level),
		Runs:  []*Run{{Text: text}},
	}
	d.Blocks = append(d.Blocks, b)
	return b
}

// AddParagraph appends a paragraph block. An empty text adds no run.
func (d *Document) AddParagraph(text, style string) *Block {
	b := &Block{Kind: KindParagraph, Style: style}
	if text != "" {
		b.AddRun(&Run{Text: text})
	}
	d.Blocks = append(d.Blocks, b)
	return b
}

// LastBlock returns the most recently added block, or nil.
func (d *Document) LastBlock() *Block {
	if len(d.Blocks) == 0 {
		return nil
	}
	return d.Blocks[len(d.Blocks)-1]
}

// AddRun appends r to the block and returns it.
func (b *Block) AddRun(r *Run) *Run {
	b.Runs = append(b.Runs, r)
	return r
}

// Text concatenates the text of all runs.
func (b *Block) Text() string {
	var buf strings.Builder
	for _, r := range b.Runs {
		buf.WriteString(r.Text)
	}
	return buf.String()
}
