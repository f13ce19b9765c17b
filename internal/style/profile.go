// Package style provides named style profiles: bundles of document-level
// formatting applied to a new document before any content is added.
package style

import "github.com/dgallion1/md2docx/internal/doctree"

// DefaultName is the profile used when none is requested.
const DefaultName = "default"

// Profile produces the document defaults for one named style. Defaults
// returns a fresh value on every call.
type Profile interface {
	Name() string
	Defaults() doctree.Defaults
}

type defaultProfile struct{}

func (defaultProfile) Name() string { return DefaultName }

// Defaults lays out an A4 page with 60pt margins, justified 10pt Calibri
// Light body text and bold small-caps Calibri headings for levels 1..3.
func (defaultProfile) Defaults() doctree.Defaults {
	d := doctree.BaseDefaults()

	d.Page = doctree.Page{
		Height: doctree.Mm(297),
		Width:  doctree.Mm(210),
		Top:    doctree.Pt(60),
		Bottom: doctree.Pt(60),
		Left:   doctree.Pt(60),
		Right:  doctree.Pt(60),
	}

	d.Normal = doctree.ParagraphFormat{
		Font:        "Calibri Light",
		Size:        doctree.Pt(10),
		Alignment:   doctree.AlignJustify,
		LineSpacing: doctree.SpacingSingle,
		SpaceAfter:  doctree.Pt(10),
	}

	d.Quote.Alignment = doctree.AlignLeft

	for level := 1; level <= 3; level++ {
		d.Headings[level-1] = doctree.HeadingFormat{
			Font:      "Calibri",
			Size:      doctree.Pt(float64(10 + 2*(3-level))),
			Bold:      true,
			SmallCaps: true,
		}
	}
	return d
}

// bareProfile leaves the template formatting untouched.
type bareProfile struct{}

func (bareProfile) Name() string { return "" }

func (bareProfile) Defaults() doctree.Defaults { return doctree.BaseDefaults() }
