package doctree

import "fmt"

// Length is a distance in twentieths of a point (twips), the native unit
// of the word-processing markup.
type Length int

// Pt converts points to a Length.
func Pt(v float64) Length { return Length(v*20 + 0.5) }

// Mm converts millimetres to a Length.
func Mm(v float64) Length { return Length(v/25.4*1440 + 0.5) }

// Inch converts inches to a Length.
func Inch(v float64) Length { return Length(v*1440 + 0.5) }

// HalfPoints returns l in half-points, the unit used for font sizes.
func (l Length) HalfPoints() int { return int(l) / 10 }

// Points returns l in points.
func (l Length) Points() float64 { return float64(l) / 20 }

// Alignment is a paragraph justification.
type Alignment string

const (
	AlignInherit Alignment = ""
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// LineSpacing is a paragraph line-spacing rule.
type LineSpacing string

const (
	SpacingInherit LineSpacing = ""
	SpacingSingle  LineSpacing = "single"
	SpacingOneHalf LineSpacing = "onehalf"
	SpacingDouble  LineSpacing = "double"
)

// Page holds page geometry.
type Page struct {
	Width, Height            Length
	Top, Bottom, Left, Right Length
}

// ParagraphFormat holds paragraph-style formatting. Zero fields leave the
// template's value in place.
type ParagraphFormat struct {
	Font        string
	Size        Length
	Alignment   Alignment
	LineSpacing LineSpacing
	SpaceBefore Length
	SpaceAfter  Length
}

// HeadingFormat holds the formatting of one heading level.
type HeadingFormat struct {
	Font        string
	Size        Length
	Color       string // Hex RGB; empty means automatic
	Bold        bool
	Italic      bool
	SmallCaps   bool
	SpaceBefore Length // Zero removes the spacing above the heading
}

// MaxHeadingLevel is the deepest heading level supported.
const MaxHeadingLevel = 6

// Defaults is the document-level formatting a style profile produces.
type Defaults struct {
	Page     Page
	Normal   ParagraphFormat
	Quote    ParagraphFormat
	Headings [MaxHeadingLevel]HeadingFormat // Indexed by level-1
}

// BaseDefaults returns the formatting of a document with no profile applied:
// US Letter with one-inch margins and the template's heading styles.
func BaseDefaults() Defaults {
	d := Defaults{
		Page: Page{
			Width:  Inch(8.5),
			Height: Inch(11),
			Top:    Inch(1),
			Bottom: Inch(1),
			Left:   Inch(1),
			Right:  Inch(1),
		},
		Normal: ParagraphFormat{
			Font: "Calibri",
			Size: Pt(11),
		},
	}
	for level := 1; level <= MaxHeadingLevel; level++ {
		h := HeadingFormat{
			Font:        "Calibri Light",
			Bold:        level <= 2,
			Color:       "2F5496",
			SpaceBefore: Pt(12),
		}
		switch level {
		case 1:
			h.Size = Pt(16)
		case 2:
			h.Size = Pt(13)
		default:
			h.Size = Pt(12)
		}
		d.Headings[level-1] = h
	}
	return d
}

// Heading returns the format for a heading level.
func (d *Defaults) Heading(level int) *HeadingFormat {
	if level < 1 || level > MaxHeadingLevel {
		return nil
	}
	return &d.Headings[level-1]
}

// HeadingStyle returns the paragraph style name for a heading level.
func HeadingStyle(level int) string {
	return fmt.Sprintf("Heading %d", level)
}

// Meta carries document properties written to the package core properties.
type Meta struct {
	Title   string
	Author  string
	Subject string
}
