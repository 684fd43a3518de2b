package compose

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink persists composed pages.
type Sink interface {
	// Save stores p under stem and returns where it went.
	Save(stem string, p *Page) (string, error)
}

// FileSink writes each page to <Dir>/<stem>.pdf.
type FileSink struct {
	Dir string
}

// NewFileSink returns a sink writing into dir. The directory is created on
// the first Save.
func NewFileSink(dir string) *FileSink {
	return &FileSink{Dir: dir}
}

// Save writes the page through a temporary file in the same directory and
// renames it into place, so a reader never sees a half-written poster.
func (s *FileSink) Save(stem string, p *Page) (path string, err error) {
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Dir, "."+stem+"-*.pdf.tmp")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best effort cleanup
		}
	}()

	if _, err := p.WriteTo(tmp); err != nil {
		_ = tmp.Close() //nolint:errcheck // the write error is reported
		return "", fmt.Errorf("write %s: %w", stem, err)
	}
	// CreateTemp uses 0600; posters are meant to be shared.
	if err := tmp.Chmod(0o644); err != nil { //nolint:gosec // output is public
		_ = tmp.Close() //nolint:errcheck // the chmod error is reported
		return "", fmt.Errorf("chmod %s: %w", stem, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", stem, err)
	}

	path = filepath.Join(s.Dir, stem+".pdf")
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename %s: %w", stem, err)
	}
	return path, nil
}
