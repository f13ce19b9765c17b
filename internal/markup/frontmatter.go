package markup

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/adrg/frontmatter"
)

// ErrInvalidFrontMatter is matched by front matter blocks that do not decode.
var ErrInvalidFrontMatter = errors.New("invalid front matter")

// FrontMatter holds the metadata keys recognised at the top of a markdown
// document.
type FrontMatter struct {
	Title   string `yaml:"title" toml:"title" json:"title"`
	Author  string `yaml:"author" toml:"author" json:"author"`
	Subject string `yaml:"subject" toml:"subject" json:"subject"`
	Style   string `yaml:"style" toml:"style" json:"style"`
}

// SplitFrontMatter strips a leading YAML, TOML or JSON front matter block
// and returns it with the remaining markdown body. A document without front
// matter is returned unchanged.
func SplitFrontMatter(src []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta)
	if err != nil {
		return FrontMatter{}, nil, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}
	return meta, body, nil
}
