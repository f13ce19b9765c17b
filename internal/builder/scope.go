package builder

import "fmt"

// MaxListDepth is the deepest list nesting the builder accepts.
const MaxListDepth = 3

const quoteStyle = "Quote"

// styleStack records the paragraph style new blocks receive. The bottom
// entry is the default style and is never popped.
type styleStack []string

func newStyleStack() styleStack {
	return styleStack{""}
}

func (s *styleStack) push(style string) {
	*s = append(*s, style)
}

func (s *styleStack) pop() {
	if len(*s) > 1 {
		*s = (*s)[:len(*s)-1]
	}
}

func (s styleStack) top() string {
	return s[len(s)-1]
}

// ListStyle returns the paragraph style for list items of the given kind
// ("ul" or "ol") at depth 1..MaxListDepth.
func ListStyle(tag string, depth int) string {
	family := "List Bullet"
	if tag == "ol" {
		family = "List Number"
	}
	if depth <= 1 {
		return family
	}
	return fmt.Sprintf("%s %d", family, depth)
}
