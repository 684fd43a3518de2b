package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iranrevolution2026/posters/internal/model"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrBatchNotFound is returned when the input file does not exist.
	ErrBatchNotFound = errors.New("batch file not found")

	// ErrBatchMalformed is returned when the input is not a JSON batch of records.
	ErrBatchMalformed = errors.New("batch is not a JSON array of records")
)

// zwnj is the zero-width non-joiner. Biographies pasted from social
// networks carry it between words, where it only produces blank glyphs.
const zwnj = "\u200c"

// BatchLoadError reports a fatal failure to read the batch.
type BatchLoadError struct {
	Path string
	Err  error
}

func (e *BatchLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to load batch: %v", e.Err)
	}
	return fmt.Sprintf("failed to load batch %s: %v", e.Path, e.Err)
}

func (e *BatchLoadError) Unwrap() error {
	return e.Err
}

// Result is a loaded batch.
type Result struct {
	// Records are in input order with defaults applied. Entries that could
	// not be decoded are kept with Invalid set, so they are reported as
	// failed in their place.
	Records []model.VictimRecord

	// Warnings describe records that deserve attention, such as a
	// duplicate id or an undecodable entry.
	Warnings []string
}

// envelope is the object form written by the backup exporter.
type envelope struct {
	Memorials []json.RawMessage `json:"memorials"`
	Data      []json.RawMessage `json:"data"`
}

// Load reads and decodes the batch at path.
func Load(path string) (*Result, error) {
	f, err := os.Open(path) //nolint:gosec // Input path is given by the user
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &BatchLoadError{Path: path, Err: ErrBatchNotFound}
		}
		return nil, &BatchLoadError{Path: path, Err: err}
	}
	defer f.Close()

	res, err := Decode(f)
	if err != nil {
		var ble *BatchLoadError
		if errors.As(err, &ble) {
			ble.Path = path
		}
		return nil, err
	}
	return res, nil
}

// Decode reads a batch from r. Each entry is decoded on its own: a
// malformed entry fails only its record. The batch itself is malformed
// when it is not JSON, has no record array, or none of its entries is a
// record.
func Decode(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &BatchLoadError{Err: err}
	}

	entries, err := decodeEntries(data)
	if err != nil {
		return nil, &BatchLoadError{Err: fmt.Errorf("%w: %w", ErrBatchMalformed, err)}
	}

	res := &Result{Records: make([]model.VictimRecord, 0, len(entries))}
	ids := make(map[string]int, len(entries))
	stems := make(model.StemSet, len(entries))
	var firstErr error
	invalid := 0

	for i, raw := range entries {
		var rec model.VictimRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			rec = salvage(raw)
			rec.Invalid = err
			if firstErr == nil {
				firstErr = err
			}
			invalid++
		}
		normalize(&rec)
		rec.ApplyDefaults()

		// Same order and rules as the batch processor, so the file names
		// named here are the ones written.
		stem, holder := stems.Claim(rec.ID, i)
		first, dup := ids[rec.ID]

		switch {
		case rec.Invalid != nil:
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("record %d (%s) is invalid and will be skipped: %v", i+1, rec.Name, rec.Invalid))
		case rec.ID == "":
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("record %d (%s) has no id; it will be written as %s.pdf", i+1, rec.Name, stem))
		case dup:
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("record %d duplicates id %q of record %d; it will be written as %s.pdf", i+1, rec.ID, first+1, stem))
		case holder >= 0:
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("record %d (id %q) has the same file name as record %d; it will be written as %s.pdf", i+1, rec.ID, holder+1, stem))
		}
		if !dup && rec.ID != "" {
			ids[rec.ID] = i
		}

		res.Records = append(res.Records, rec)
	}

	if invalid > 0 && invalid == len(entries) {
		return nil, &BatchLoadError{Err: fmt.Errorf("%w: %w", ErrBatchMalformed, firstErr)}
	}
	return res, nil
}

func decodeEntries(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New("empty input")
	}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, err
		}
		if env.Memorials != nil {
			return env.Memorials, nil
		}
		if env.Data != nil {
			return env.Data, nil
		}
		return nil, errors.New(`object has no "memorials" or "data" array`)
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// salvage recovers the id and name of an entry that failed to decode, so
// the failure is reported against the right record.
func salvage(raw json.RawMessage) model.VictimRecord {
	var rec model.VictimRecord

	var fields map[string]any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return rec
	}
	switch id := fields["id"].(type) {
	case string:
		rec.ID = strings.TrimSpace(id)
	case json.Number:
		rec.ID = id.String()
	}
	if name, ok := fields["name"].(string); ok {
		rec.Name = name
	}
	return rec
}

// normalize converts all text to NFC so that measurement and glyph lookup
// see precomposed characters, and strips ZWNJ from the biography.
func normalize(r *model.VictimRecord) {
	r.ID = norm.NFC.String(r.ID)
	r.Name = norm.NFC.String(r.Name)
	r.NameSecondary = norm.NFC.String(r.NameSecondary)
	r.City = norm.NFC.String(r.City)
	r.Date = norm.NFC.String(r.Date)
	r.Bio = strings.ReplaceAll(norm.NFC.String(r.Bio), zwnj, "")
}
