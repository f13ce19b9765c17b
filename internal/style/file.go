package style

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/md2docx/internal/doctree"
)

// fileProfile is a profile read from a YAML style file.
type fileProfile struct {
	name     string
	defaults doctree.Defaults
}

func (p *fileProfile) Name() string { return p.name }

// Defaults returns a copy of the parsed defaults.
func (p *fileProfile) Defaults() doctree.Defaults { return p.defaults }

// profileFile is the on-disk schema. Absent keys keep the base formatting.
type profileFile struct {
	Name     string              `yaml:"name"`
	Page     pageSpec            `yaml:"page"`
	Normal   paragraphSpec       `yaml:"normal"`
	Quote    paragraphSpec       `yaml:"quote"`
	Headings map[int]headingSpec `yaml:"headings"`
}

type pageSpec struct {
	Width   *length `yaml:"width"`
	Height  *length `yaml:"height"`
	Margins struct {
		Top    *length `yaml:"top"`
		Bottom *length `yaml:"bottom"`
		Left   *length `yaml:"left"`
		Right  *length `yaml:"right"`
	} `yaml:"margins"`
}

type paragraphSpec struct {
	Font        *string `yaml:"font"`
	Size        *length `yaml:"size"`
	Alignment   *string `yaml:"alignment"`
	LineSpacing *string `yaml:"line_spacing"`
	SpaceBefore *length `yaml:"space_before"`
	SpaceAfter  *length `yaml:"space_after"`
}

type headingSpec struct {
	Font        *string `yaml:"font"`
	Size        *length `yaml:"size"`
	Color       *string `yaml:"color"`
	Bold        *bool   `yaml:"bold"`
	Italic      *bool   `yaml:"italic"`
	SmallCaps   *bool   `yaml:"small_caps"`
	SpaceBefore *length `yaml:"space_before"`
}

// length accepts "10pt", "297mm", "2.5cm", "1in" or a bare number of points.
type length doctree.Length

func (l *length) UnmarshalYAML(value *yaml.Node) error {
	v, err := ParseLength(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*l = length(v)
	return nil
}

// ParseLength parses a distance with a pt, mm, cm or in suffix. A bare
// number is taken as points.
func ParseLength(s string) (doctree.Length, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	units := []struct {
		suffix string
		conv   func(float64) doctree.Length
	}{
		{"pt", doctree.Pt},
		{"mm", doctree.Mm},
		{"cm", func(v float64) doctree.Length { return doctree.Mm(v * 10) }},
		{"in", doctree.Inch},
	}
	conv := doctree.Pt
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, u.suffix))
			conv = u.conv
			break
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return conv(v), nil
}

// LoadFile reads a YAML style file. The profile is named by its name key,
// or by the file name without extension.
func LoadFile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read style file: %w", err)
	}
	if err := validateFile(filepath.Base(path), data); err != nil {
		return nil, err
	}

	var spec profileFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse style file %s: %w", filepath.Base(path), err)
	}

	name := spec.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	defaults, err := spec.apply(doctree.BaseDefaults())
	if err != nil {
		return nil, fmt.Errorf("style file %s: %w", filepath.Base(path), err)
	}
	return &fileProfile{name: name, defaults: defaults}, nil
}

// LoadDir reads every *.yaml and *.yml file in dir, in name order.
func LoadDir(dir string) ([]Profile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read styles dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	profiles := make([]Profile, 0, len(paths))
	for _, path := range paths {
		p, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (f *profileFile) apply(d doctree.Defaults) (doctree.Defaults, error) {
	setLength(&d.Page.Width, f.Page.Width)
	setLength(&d.Page.Height, f.Page.Height)
	setLength(&d.Page.Top, f.Page.Margins.Top)
	setLength(&d.Page.Bottom, f.Page.Margins.Bottom)
	setLength(&d.Page.Left, f.Page.Margins.Left)
	setLength(&d.Page.Right, f.Page.Margins.Right)

	if err := f.Normal.apply(&d.Normal); err != nil {
		return d, fmt.Errorf("normal: %w", err)
	}
	if err := f.Quote.apply(&d.Quote); err != nil {
		return d, fmt.Errorf("quote: %w", err)
	}

	for level, spec := range f.Headings {
		h := d.Heading(level)
		if h == nil {
			return d, fmt.Errorf("heading level %d out of range 1..%d", level, doctree.MaxHeadingLevel)
		}
		spec.apply(h)
	}
	return d, nil
}

func (s paragraphSpec) apply(p *doctree.ParagraphFormat) error {
	if s.Font != nil {
		p.Font = *s.Font
	}
	setLength(&p.Size, s.Size)
	setLength(&p.SpaceBefore, s.SpaceBefore)
	setLength(&p.SpaceAfter, s.SpaceAfter)

	if s.Alignment != nil {
		a, err := parseAlignment(*s.Alignment)
		if err != nil {
			return err
		}
		p.Alignment = a
	}
	if s.LineSpacing != nil {
		ls, err := parseLineSpacing(*s.LineSpacing)
		if err != nil {
			return err
		}
		p.LineSpacing = ls
	}
	return nil
}

func (s headingSpec) apply(h *doctree.HeadingFormat) {
	if s.Font != nil {
		h.Font = *s.Font
	}
	if s.Color != nil {
		h.Color = strings.TrimPrefix(*s.Color, "#")
	}
	if s.Bold != nil {
		h.Bold = *s.Bold
	}
	if s.Italic != nil {
		h.Italic = *s.Italic
	}
	if s.SmallCaps != nil {
		h.SmallCaps = *s.SmallCaps
	}
	setLength(&h.Size, s.Size)
	setLength(&h.SpaceBefore, s.SpaceBefore)
}

func setLength(dst *doctree.Length, v *length) {
	if v != nil {
		*dst = doctree.Length(*v)
	}
}

func parseAlignment(s string) (doctree.Alignment, error) {
	switch strings.ToLower(s) {
	case "left", "start":
		return doctree.AlignLeft, nil
	case "center", "centre":
		return doctree.AlignCenter, nil
	case "right", "end":
		return doctree.AlignRight, nil
	case "justify", "both":
		return doctree.AlignJustify, nil
	}
	return "", fmt.Errorf("unknown alignment %q", s)
}

func parseLineSpacing(s string) (doctree.LineSpacing, error) {
	switch strings.ToLower(s) {
	case "single", "1":
		return doctree.SpacingSingle, nil
	case "onehalf", "1.5":
		return doctree.SpacingOneHalf, nil
	case "double", "2":
		return doctree.SpacingDouble, nil
	}
	return "", fmt.Errorf("unknown line spacing %q", s)
}
