package markup

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// blockTags are elements whose boundaries make adjacent whitespace
// insignificant.
var blockTags = map[string]bool{
	"html": true, "body": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "blockquote": true, "hr": true,
	"ul": true, "ol": true, "li": true,
}

// Parse parses rendered HTML into a tree rooted at a synthetic Node with an
// empty tag whose children are the top-level elements of <body>.
func Parse(markup string) (*Node, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	root := &Node{}
	body := findBody(doc)
	if body == nil {
		body = doc
	}
	convertChildren(root, body)
	return root, nil
}

// convertChildren copies the element children of src into dst. Text before
// the first element goes to dst.Text, text after an element to its Tail.
func convertChildren(dst *Node, src *html.Node) {
	var last *Node
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			text := cleanText(c)
			if text == "" {
				continue
			}
			if last == nil {
				dst.Text += text
			} else {
				last.Tail += text
			}
		case html.ElementNode:
			n := &Node{Tag: c.Data}
			convertChildren(n, c)
			dst.Children = append(dst.Children, n)
			last = n
		}
	}
}

// cleanText turns soft line breaks into spaces and drops whitespace that
// touches a block boundary. Whitespace-only text between blocks yields "".
func cleanText(n *html.Node) string {
	text := strings.ReplaceAll(n.Data, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", " ")

	if atBlockBoundary(n.PrevSibling, n.Parent) {
		text = strings.TrimLeft(text, " \t")
	}
	if atBlockBoundary(n.NextSibling, n.Parent) {
		text = strings.TrimRight(text, " \t")
	}
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return norm.NFC.String(text)
}

// atBlockBoundary reports whether the sibling next to a text node (or, when
// there is none, its parent) is a block element.
func atBlockBoundary(sibling, parent *html.Node) bool {
	n := sibling
	if n == nil {
		n = parent
	}
	if n == nil {
		return true
	}
	return n.Type == html.ElementNode && blockTags[n.Data]
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
