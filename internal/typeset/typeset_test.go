package typeset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/image/font/gofont/goregular"
)

const longText = "Mahsa was a twenty-two year old woman from Saqqez who was arrested " +
	"by the morality police in Tehran and died in custody three days later. " +
	"Her death started the largest protests the country had seen in decades."

func newDoc(t *testing.T) *gofpdf.Fpdf {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	return pdf
}

func goRegular(t *testing.T) *TrueTypeFace {
	t.Helper()
	face, err := ProbeBytes("goregular.ttf", goregular.TTF)
	if err != nil {
		t.Fatalf("expected Go Regular to probe, got %v", err)
	}
	return face
}

func TestCoreFaceCovers(t *testing.T) {
	t.Parallel()

	face := NewCoreFace("")
	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{"ascii", "Mahsa Amini", true},
		{"latin-1", "Zo\u00eb M\u00fcller", true},
		{"cp1252 extras", "\u201cquoted\u201d \u2014 \u20ac5", true},
		{"persian", "\u0645\u0647\u0633\u0627", false},
		{"mixed", "Mahsa \u0645\u0647\u0633\u0627", false},
		{"zwnj is ignored", "a\u200cb", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := face.Covers(tc.input); got != tc.expected {
				t.Errorf("Covers(%q) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestEncode1252(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"ascii", "Tehran", "Tehran"},
		{"accent", "caf\u00e9", "caf\xe9"},
		{"euro", "\u20ac", "\x80"},
		{"unmappable dropped", "Mahsa \u0645\u0647\u0633\u0627", "Mahsa "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Encode1252(tc.input); got != tc.expected {
				t.Errorf("Encode1252(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestCoreFaceMeasure(t *testing.T) {
	t.Parallel()

	face := NewCoreFace("")

	t.Run("short text is one line", func(t *testing.T) {
		t.Parallel()
		pdf := newDoc(t)
		b := face.Measure(pdf, "Mahsa Amini", StyleBold, 24, 190, 10)
		if len(b.Lines) != 1 {
			t.Fatalf("expected 1 line, got %d", len(b.Lines))
		}
		if b.Height() != 10 {
			t.Errorf("expected height 10, got %v", b.Height())
		}
	})

	t.Run("long text wraps within width", func(t *testing.T) {
		t.Parallel()
		pdf := newDoc(t)
		b := face.Measure(pdf, longText, StyleRegular, 12, 80, 7.2)
		if len(b.Lines) < 3 {
			t.Fatalf("expected the text to wrap, got %d lines", len(b.Lines))
		}
		pdf.SetFont(face.Name(), "", 12)
		for _, line := range b.Lines {
			if w := pdf.GetStringWidth(line); w > 80 {
				t.Errorf("line %q is %.2f wide, expected at most 80", line, w)
			}
		}
		if got, want := b.Height(), float64(len(b.Lines))*7.2; got != want {
			t.Errorf("expected height %v, got %v", want, got)
		}
	})

	t.Run("smaller size never needs more lines", func(t *testing.T) {
		t.Parallel()
		pdf := newDoc(t)
		prev := 0
		for _, size := range []float64{8, 10, 12, 14, 16} {
			n := len(face.Measure(pdf, longText, StyleRegular, size, 170, size*0.6).Lines)
			if n < prev {
				t.Errorf("size %v needs %d lines, fewer than a smaller size (%d)", size, n, prev)
			}
			prev = n
		}
	})

	t.Run("blank text is empty", func(t *testing.T) {
		t.Parallel()
		pdf := newDoc(t)
		if b := face.Measure(pdf, "  \r\n ", StyleRegular, 12, 100, 7); !b.Empty() {
			t.Errorf("expected no lines, got %q", b.Lines)
		}
	})
}

func TestCoreFaceRender(t *testing.T) {
	t.Parallel()

	face := NewCoreFace("")
	pdf := newDoc(t)
	b := face.Measure(pdf, longText, StyleRegular, 12, 170, 7.2)

	bottom := face.Render(pdf, b, 20, 100, 170, AlignCenter)
	if want := 100 + b.Height(); bottom != want {
		t.Errorf("expected render to end at %v, got %v", want, bottom)
	}
	if pdf.Err() {
		t.Errorf("unexpected pdf error: %v", pdf.Error())
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("valid font", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "goregular.ttf")
		if err := os.WriteFile(path, goregular.TTF, 0o600); err != nil {
			t.Fatal(err)
		}
		face, err := Probe(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if face.Path() != path {
			t.Errorf("expected path %q, got %q", path, face.Path())
		}
		if !strings.Contains(face.Name(), "Go") {
			t.Errorf("expected family name from the name table, got %q", face.Name())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Probe(filepath.Join(t.TempDir(), "Vazir.ttf"))
		var fle *FontLoadError
		if !errors.As(err, &fle) {
			t.Fatalf("expected FontLoadError, got %v", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected wrapped fs.ErrNotExist, got %v", err)
		}
	})

	t.Run("not a font", func(t *testing.T) {
		t.Parallel()
		_, err := ProbeBytes("junk.ttf", []byte("definitely not a font"))
		var fle *FontLoadError
		if !errors.As(err, &fle) {
			t.Fatalf("expected FontLoadError, got %v", err)
		}
		if fle.Path != "junk.ttf" {
			t.Errorf("expected path junk.ttf, got %q", fle.Path)
		}
	})
}

func TestTrueTypeFace(t *testing.T) {
	t.Parallel()

	face := goRegular(t)

	t.Run("covers latin but not persian", func(t *testing.T) {
		t.Parallel()
		if !face.Covers("Mahsa Amini") {
			t.Error("expected Go Regular to cover Latin text")
		}
		if face.Covers("\u0645\u0647\u0633\u0627") {
			t.Error("expected Go Regular not to cover Persian text")
		}
	})

	t.Run("measure wraps and renders", func(t *testing.T) {
		t.Parallel()
		pdf := newDoc(t)
		face.Register(pdf)
		b := face.Measure(pdf, longText, StyleRegular, 12, 80, 7.2)
		if len(b.Lines) < 3 {
			t.Fatalf("expected the text to wrap, got %d lines", len(b.Lines))
		}
		bottom := face.Render(pdf, b, 20, 50, 80, AlignLeft)
		if want := 50 + b.Height(); bottom != want {
			t.Errorf("expected render to end at %v, got %v", want, bottom)
		}
		if pdf.Err() {
			t.Errorf("unexpected pdf error: %v", pdf.Error())
		}
	})

	t.Run("runes outside the BMP are dropped", func(t *testing.T) {
		t.Parallel()
		pdf := newDoc(t)
		face.Register(pdf)
		b := face.Measure(pdf, "a\U0001F56Fb", StyleRegular, 12, 100, 7)
		if len(b.Lines) != 1 || b.Lines[0] != "ab" {
			t.Errorf("expected a single line \"ab\", got %q", b.Lines)
		}
	})
}

func TestSelect(t *testing.T) {
	t.Parallel()

	core := NewCoreFace("")
	tt := goRegular(t)
	persian := "\u0645\u0647\u0633\u0627"

	testCases := []struct {
		name      string
		text      string
		preferred Face
		fallback  Face
		expected  Face
	}{
		{"preferred covers", "Mahsa", core, tt, core},
		{"fallback covers", "\u0141\u00f3d\u017a", core, tt, tt},
		{"nobody covers", persian, core, tt, core},
		{"no fallback", persian, core, nil, core},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Select(tc.text, tc.preferred, tc.fallback); got != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected.Name(), got.Name())
			}
		})
	}
}
