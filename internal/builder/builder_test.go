package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/md2docx/internal/doctree"
	"github.com/dgallion1/md2docx/internal/markup"
)

func el(tag, text string, children ...*markup.Node) *markup.Node {
	return &markup.Node{Tag: tag, Text: text, Children: children}
}

func tail(n *markup.Node, text string) *markup.Node {
	n.Tail = text
	return n
}

func root(children ...*markup.Node) *markup.Node {
	return &markup.Node{Children: children}
}

func build(t *testing.T, r *markup.Node) *doctree.Document {
	t.Helper()
	doc, err := Build(r, doctree.BaseDefaults())
	require.NoError(t, err)
	return doc
}

func TestBuild_TailTextAttachment(t *testing.T) {
	doc := build(t, root(el("p", "A", tail(el("em", "B"), "C"))))

	require.Len(t, doc.Blocks, 1)
	runs := doc.Blocks[0].Runs
	require.Len(t, runs, 3)
	assert.Equal(t, doctree.Run{Text: "A"}, *runs[0])
	assert.Equal(t, doctree.Run{Text: "B", Italic: true}, *runs[1])
	assert.Equal(t, doctree.Run{Text: "C"}, *runs[2])
}

func TestBuild_InlineFormatting(t *testing.T) {
	doc := build(t, root(el("p", "x ",
		tail(el("strong", "bold"), " and "),
		tail(el("del", "gone"), "."),
	)))

	runs := doc.Blocks[0].Runs
	require.Len(t, runs, 5)
	assert.True(t, runs[1].Bold)
	assert.False(t, runs[1].Italic)
	assert.True(t, runs[3].Strike)
	assert.False(t, runs[3].Bold)
	assert.Equal(t, "x bold and gone.", doc.Blocks[0].Text())
}

func TestBuild_Headings(t *testing.T) {
	doc := build(t, root(
		el("h1", "Title"),
		el("h3", "Sub"),
		el("h6", ""),
	))

	require.Len(t, doc.Blocks, 3)
	for i, want := range []struct {
		level int
		text  string
	}{{1, "Title"}, {3, "Sub"}, {6, ""}} {
		b := doc.Blocks[i]
		assert.Equal(t, doctree.KindHeading, b.Kind)
		assert.Equal(t, want.level, b.Level)
		assert.Equal(t, doctree.HeadingStyle(want.level), b.Style)
		require.Len(t, b.Runs, 1, "heading %d keeps one run even when empty", i)
		assert.Equal(t, want.text, b.Runs[0].Text)
	}
}

func TestBuild_NestedListStyles(t *testing.T) {
	doc := build(t, root(
		el("ul", "", el("li", "A", el("ul", "", el("li", "B")))),
	))

	require.Len(t, doc.Blocks, 2)
	assert.Equal(t, "List Bullet", doc.Blocks[0].Style)
	assert.Equal(t, "A", doc.Blocks[0].Text())
	assert.Equal(t, "List Bullet 2", doc.Blocks[1].Style)
	assert.Equal(t, "B", doc.Blocks[1].Text())
}

func TestBuild_MixedListsThreeLevels(t *testing.T) {
	doc := build(t, root(
		el("ol", "", el("li", "one",
			el("ul", "", el("li", "two",
				el("ol", "", el("li", "three")),
			)),
		)),
		el("p", "after"),
	))

	styles := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		styles = append(styles, b.Style)
	}
	assert.Equal(t, []string{"List Number", "List Bullet 2", "List Number 3", ""}, styles)
}

func TestBuild_BlockquoteScopesStyle(t *testing.T) {
	doc := build(t, root(
		el("blockquote", "", el("p", "quoted"), el("ul", "", el("li", "item"))),
		el("p", "plain"),
	))

	require.Len(t, doc.Blocks, 3)
	assert.Equal(t, "Quote", doc.Blocks[0].Style)
	assert.Equal(t, "List Bullet", doc.Blocks[1].Style)
	assert.Equal(t, "", doc.Blocks[2].Style)
}

func TestBuild_EmptyList(t *testing.T) {
	doc := build(t, root(el("ul", ""), el("ol", ""), el("p", "x")))

	require.Len(t, doc.Blocks, 1)
	assert.Equal(t, "", doc.Blocks[0].Style)
}

func TestBuild_HorizontalRuleBreaksLastRun(t *testing.T) {
	doc := build(t, root(
		el("p", "A", el("strong", "B")),
		el("hr", ""),
		el("p", "next"),
	))

	require.Len(t, doc.Blocks, 2)
	runs := doc.Blocks[0].Runs
	assert.False(t, runs[0].PageBreak)
	assert.True(t, runs[1].PageBreak)
	assert.False(t, doc.Blocks[1].Runs[0].PageBreak)
}

func TestBuild_HorizontalRuleAfterEmptyParagraph(t *testing.T) {
	doc := build(t, root(el("p", ""), el("hr", "")))

	runs := doc.Blocks[0].Runs
	require.Len(t, runs, 1)
	assert.True(t, runs[0].PageBreak)
	assert.Equal(t, "", runs[0].Text)
}

func TestBuild_WhitespaceTailIgnored(t *testing.T) {
	doc := build(t, root(tail(el("p", "A"), "  \n "), el("p", "B")))
	require.Len(t, doc.Blocks, 2)
	assert.Len(t, doc.Blocks[0].Runs, 1)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tree     *markup.Node
		sentinel error
		tag      string
	}{
		{
			name:     "unsupported tag",
			tree:     root(el("p", "x", el("a", "link"))),
			sentinel: ErrUnsupportedMarkup,
			tag:      "a",
		},
		{
			name:     "inline outside paragraph",
			tree:     root(el("em", "loose")),
			sentinel: ErrStructuralViolation,
			tag:      "em",
		},
		{
			name:     "inline inside heading",
			tree:     root(el("h2", "Title ", el("strong", "bold"))),
			sentinel: ErrStructuralViolation,
			tag:      "strong",
		},
		{
			name:     "rule before content",
			tree:     root(el("hr", "")),
			sentinel: ErrStructuralViolation,
			tag:      "hr",
		},
		{
			name:     "tail after paragraph",
			tree:     root(tail(el("p", "x"), "stray")),
			sentinel: ErrStructuralViolation,
			tag:      "p",
		},
		{
			name:     "tail after ordered list",
			tree:     root(el("ol", "", tail(el("li", "a"), "stray"))),
			sentinel: ErrStructuralViolation,
			tag:      "li",
		},
		{
			name: "list too deep",
			tree: root(el("ul", "", el("li", "1",
				el("ul", "", el("li", "2",
					el("ul", "", el("li", "3",
						el("ul", "", el("li", "4")),
					)),
				)),
			))),
			sentinel: ErrStructuralViolation,
			tag:      "ul",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Build(tt.tree, doctree.BaseDefaults())
			require.Error(t, err)
			assert.Nil(t, doc)
			assert.ErrorIs(t, err, tt.sentinel)

			var unsupported *UnsupportedMarkupError
			var violation *StructuralViolationError
			switch {
			case errors.As(err, &unsupported):
				assert.Equal(t, tt.tag, unsupported.Tag)
			case errors.As(err, &violation):
				assert.Equal(t, tt.tag, violation.Tag)
			default:
				t.Fatalf("unexpected error type %T", err)
			}
		})
	}
}

func TestBuild_BlockCountMatchesCreatingElements(t *testing.T) {
	trees := []*markup.Node{
		root(),
		root(el("h1", "a"), el("p", "b"), el("p", "c", el("em", "d"))),
		root(el("blockquote", "", el("p", "q"), el("blockquote", "", el("p", "qq")))),
		root(
			el("h2", "x"),
			el("ol", "", el("li", "1"), el("li", "2", el("ul", "", el("li", "2a"), el("li", "2b")))),
			el("hr", ""),
			el("ul", ""),
			el("p", "end"),
		),
	}

	for i, tree := range trees {
		doc, err := Build(tree, doctree.BaseDefaults())
		require.NoError(t, err, "tree %d", i)
		want := tree.Count("h1", "h2", "h3", "h4", "h5", "h6", "p", "li")
		assert.Len(t, doc.Blocks, want, "tree %d", i)
	}
}

func TestBuild_NestingInvariant(t *testing.T) {
	tree := root(
		el("blockquote", "",
			el("ul", "", el("li", "a",
				el("ol", "", el("li", "b",
					el("ul", "", el("li", "c")),
				)),
			)),
			el("p", "q"),
		),
		el("ol", "", el("li", "z")),
	)

	scoping := func(tag string) bool {
		return tag == "blockquote" || tag == "ul" || tag == "ol"
	}

	// Walk the tree with the builder's enter/leave actions while keeping an
	// independent stack of open scoping elements.
	b := newBuilder(doctree.BaseDefaults())
	var open []string
	visited := 0
	var walk func(nodes []*markup.Node)
	walk = func(nodes []*markup.Node) {
		for _, elem := range nodes {
			require.NoError(t, b.enter(elem))
			if scoping(elem.Tag) {
				open = append(open, elem.Tag)
			}
			visited++

			lists := 0
			for _, tag := range open {
				if tag != "blockquote" {
					lists++
				}
			}
			assert.Equal(t, 1+len(open), len(b.styles), "stack depth at <%s>", elem.Tag)
			assert.Equal(t, lists, b.depth, "list depth at <%s>", elem.Tag)
			assert.LessOrEqual(t, b.depth, MaxListDepth)

			walk(elem.Children)
			b.leave(elem)
			if scoping(elem.Tag) {
				open = open[:len(open)-1]
			}
		}
	}
	walk(tree.Children)

	assert.Equal(t, tree.Count("blockquote", "ul", "ol", "li", "p"), visited)
	assert.Len(t, b.styles, 1)
	assert.Zero(t, b.depth)
	assert.Empty(t, open)
}

func TestListStyle(t *testing.T) {
	tests := []struct {
		tag   string
		depth int
		want  string
	}{
		{"ul", 1, "List Bullet"},
		{"ol", 1, "List Number"},
		{"ul", 2, "List Bullet 2"},
		{"ol", 2, "List Number 2"},
		{"ul", 3, "List Bullet 3"},
		{"ol", 3, "List Number 3"},
	}
	for _, tt := range tests {
		if got := ListStyle(tt.tag, tt.depth); got != tt.want {
			t.Errorf("ListStyle(%q, %d) = %q, want %q", tt.tag, tt.depth, got, tt.want)
		}
	}
}

func TestBuild_CarriesDefaults(t *testing.T) {
	defaults := doctree.BaseDefaults()
	defaults.Normal.Font = "Georgia"
	doc, err := Build(root(el("p", "x")), defaults)
	require.NoError(t, err)
	assert.Equal(t, "Georgia", doc.Defaults.Normal.Font)
}
