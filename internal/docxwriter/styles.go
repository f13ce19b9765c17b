package docxwriter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/md2docx/internal/builder"
	"github.com/dgallion1/md2docx/internal/doctree"
)

const (
	normalStyle = "Normal"
	quoteIndent = 720
	listIndent  = 360
)

// Numbering instances referenced by the list styles.
const (
	bulletNumID = 1
	numberNumID = 2
)

// StyleID returns the identifier a paragraph style name is stored under.
func StyleID(name string) string {
	return strings.ReplaceAll(name, " ", "")
}

// styleDef is one paragraph style as rendered into styles.xml. Zero values
// are left out of the part so the style inherits them.
type styleDef struct {
	ID, Name string
	Default  bool
	BasedOn  string
	Next     string
	KeepNext bool

	NumID, Ilvl int

	SetBefore, SetAfter bool
	Before, After       int
	Line                int // 240ths of a line
	Indent              int
	Align               string
	Outline             string

	Font                    string
	Bold, Italic, SmallCaps bool
	Color                   string
	Size                    int // Half-points
}

type listLevel struct {
	Ilvl    int
	Format  string
	StyleID string
	Text    string
	Left    int
}

type listDef struct {
	AbstractID int
	NumID      int
	Levels     []listLevel
}

type templateData struct {
	DocFont string
	DocSize int
	Styles  []styleDef
	Lists   []listDef
	Meta    doctree.Meta
}

func newTemplateData(doc *doctree.Document) templateData {
	d := doc.Defaults
	return templateData{
		DocFont: d.Normal.Font,
		DocSize: d.Normal.Size.HalfPoints(),
		Styles:  styleDefs(d),
		Lists:   listDefs(),
		Meta:    doc.Meta,
	}
}

func styleDefs(d doctree.Defaults) []styleDef {
	normal := paragraphStyle(normalStyle, d.Normal)
	normal.Default = true

	quote := paragraphStyle("Quote", d.Quote)
	quote.BasedOn = normalStyle
	quote.Next = normalStyle
	quote.Italic = true
	quote.Indent = quoteIndent

	defs := []styleDef{normal}
	for level := 1; level <= doctree.MaxHeadingLevel; level++ {
		defs = append(defs, headingStyle(level, *d.Heading(level)))
	}
	defs = append(defs, quote)

	for _, list := range []struct {
		tag   string
		numID int
	}{{"ul", bulletNumID}, {"ol", numberNumID}} {
		for depth := 1; depth <= builder.MaxListDepth; depth++ {
			name := builder.ListStyle(list.tag, depth)
			defs = append(defs, styleDef{
				ID:      StyleID(name),
				Name:    name,
				BasedOn: normalStyle,
				NumID:   list.numID,
				Ilvl:    depth - 1,
			})
		}
	}
	return defs
}

func paragraphStyle(name string, f doctree.ParagraphFormat) styleDef {
	return styleDef{
		ID:        StyleID(name),
		Name:      name,
		Font:      f.Font,
		Size:      f.Size.HalfPoints(),
		Align:     string(f.Alignment),
		Line:      lineValue(f.LineSpacing),
		SetBefore: f.SpaceBefore != 0,
		Before:    int(f.SpaceBefore),
		SetAfter:  f.SpaceAfter != 0,
		After:     int(f.SpaceAfter),
	}
}

func headingStyle(level int, h doctree.HeadingFormat) styleDef {
	name := doctree.HeadingStyle(level)
	return styleDef{
		ID:        StyleID(name),
		Name:      strings.ToLower(name),
		BasedOn:   normalStyle,
		Next:      normalStyle,
		KeepNext:  true,
		SetBefore: true,
		Before:    int(h.SpaceBefore),
		Outline:   strconv.Itoa(level - 1),
		Font:      h.Font,
		Bold:      h.Bold,
		Italic:    h.Italic,
		SmallCaps: h.SmallCaps,
		Color:     h.Color,
		Size:      h.Size.HalfPoints(),
	}
}

func lineValue(s doctree.LineSpacing) int {
	switch s {
	case doctree.SpacingSingle:
		return 240
	case doctree.SpacingOneHalf:
		return 360
	case doctree.SpacingDouble:
		return 480
	}
	return 0
}

var bulletGlyphs = [builder.MaxListDepth]string{"•", "◦", "▪"}

func listDefs() []listDef {
	bullets := listDef{AbstractID: 0, NumID: bulletNumID}
	numbers := listDef{AbstractID: 1, NumID: numberNumID}
	for depth := 1; depth <= builder.MaxListDepth; depth++ {
		left := 2 * listIndent * depth
		bullets.Levels = append(bullets.Levels, listLevel{
			Ilvl:    depth - 1,
			Format:  "bullet",
			StyleID: StyleID(builder.ListStyle("ul", depth)),
			Text:    bulletGlyphs[depth-1],
			Left:    left,
		})
		numbers.Levels = append(numbers.Levels, listLevel{
			Ilvl:    depth - 1,
			Format:  "decimal",
			StyleID: StyleID(builder.ListStyle("ol", depth)),
			Text:    fmt.Sprintf("%%%d.", depth),
			Left:    left,
		})
	}
	return []listDef{bullets, numbers}
}
