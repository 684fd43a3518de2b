package typeset

import (
	"errors"
	"fmt"
)

var (
	// ErrNoLetters is returned when a font maps neither Latin nor Arabic letters.
	ErrNoLetters = errors.New("font maps no Latin or Arabic letters")

	// ErrUnsupportedFont is returned when gofpdf cannot embed the font.
	ErrUnsupportedFont = errors.New("font cannot be embedded")
)

// FontLoadError reports a TrueType face that could not be used.
// The run continues with the core face.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("load font %s: %v", e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error {
	return e.Err
}
