package builder

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedMarkup is matched by every UnsupportedMarkupError.
	ErrUnsupportedMarkup = errors.New("unsupported markup")
	// ErrStructuralViolation is matched by every StructuralViolationError.
	ErrStructuralViolation = errors.New("structural violation")
)

// UnsupportedMarkupError reports an element outside the supported tag set.
type UnsupportedMarkupError struct {
	Tag string
}

func (e *UnsupportedMarkupError) Error() string {
	return fmt.Sprintf("unsupported markup: <%s>", e.Tag)
}

func (e *UnsupportedMarkupError) Unwrap() error { return ErrUnsupportedMarkup }

// StructuralViolationError reports well-known tags used where the document
// structure does not allow them.
type StructuralViolationError struct {
	Tag    string
	Reason string
}

func (e *StructuralViolationError) Error() string {
	return fmt.Sprintf("structural violation at <%s>: %s", e.Tag, e.Reason)
}

func (e *StructuralViolationError) Unwrap() error { return ErrStructuralViolation }
