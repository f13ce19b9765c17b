// Package markup turns markdown into an element tree the document builder
// can walk: goldmark renders HTML, x/net/html parses it back into Nodes.
package markup

// Node is one element of the rendered markup.
type Node struct {
	Tag      string  // Element name; empty for the synthetic root
	Text     string  // Text before the first child element
	Children []*Node // Child elements in document order
	Tail     string  // Text after the closing tag, before the next sibling
}

// Count returns the number of descendants of n whose tag is one of tags.
func (n *Node) Count(tags ...string) int {
	count := 0
	for _, c := range n.Children {
		for _, t := range tags {
			if c.Tag == t {
				count++
				break
			}
		}
		count += c.Count(tags...)
	}
	return count
}
