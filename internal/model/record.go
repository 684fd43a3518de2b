package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Placeholder values for fields that are missing or blank in the batch.
const (
	DefaultName = "Unknown Name"
	DefaultCity = "Unknown City"
	DefaultDate = "Unknown Date"
	DefaultBio  = "No description available."
)

// VictimRecord is one memorial entry.
//
// Only ID is required. The other text fields are replaced by the Default*
// placeholders in ApplyDefaults, so a poster can always be drawn.
type VictimRecord struct {
	// ID is the stable identifier used for the file name and the QR payload.
	ID string `json:"id"`

	// Name is the primary (Latin-script) name.
	Name string `json:"name"`

	// NameSecondary is the name in a second, possibly right-to-left, script.
	// The backup format calls it name_fa; name_secondary is also accepted.
	NameSecondary string `json:"name_fa,omitempty"`

	City string `json:"city"`
	Date string `json:"date"`
	Bio  string `json:"bio"`

	// Location is the free-form place of death. Not printed; kept so the
	// run report can show it next to the city.
	Location string `json:"location,omitempty"`

	// Media holds the photo link and related evidence links.
	Media *Media `json:"media,omitempty"`

	// Invalid is set by the loader when the batch entry could not be
	// decoded. No poster is drawn for such a record; it is reported as
	// failed with this error.
	Invalid error `json:"-"`
}

// ErrInvalidRecord wraps the decoding error of a batch entry.
var ErrInvalidRecord = errors.New("invalid record")

// Media holds the evidence links of a record.
type Media struct {
	Photo string `json:"photo,omitempty"`
	Video string `json:"video,omitempty"`
	XPost string `json:"xPost,omitempty"`
}

// recordJSON mirrors VictimRecord with the aliases accepted on input.
type recordJSON struct {
	ID            any    `json:"id"`
	Name          string `json:"name"`
	NameFa        string `json:"name_fa"`
	NameSecondary string `json:"name_secondary"`
	City          string `json:"city"`
	Date          string `json:"date"`
	Bio           string `json:"bio"`
	Location      string `json:"location"`
	PhotoURL      string `json:"photo_url"`
	Media         *Media `json:"media"`
}

// UnmarshalJSON accepts numeric ids, the name_secondary alias and a flat
// photo_url field in addition to the backup format. Numeric ids are kept
// exactly as written.
func (r *VictimRecord) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("record is null")
	}

	var raw recordJSON
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	id, err := idString(raw.ID)
	if err != nil {
		return err
	}

	*r = VictimRecord{
		ID:            id,
		Name:          raw.Name,
		NameSecondary: raw.NameFa,
		City:          raw.City,
		Date:          raw.Date,
		Bio:           raw.Bio,
		Location:      raw.Location,
		Media:         raw.Media,
	}
	if r.NameSecondary == "" {
		r.NameSecondary = raw.NameSecondary
	}
	if raw.PhotoURL != "" && r.PhotoURL() == "" {
		if r.Media == nil {
			r.Media = &Media{}
		}
		r.Media.Photo = raw.PhotoURL
	}
	return nil
}

func idString(v any) (string, error) {
	switch id := v.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(id), nil
	case json.Number:
		return id.String(), nil
	default:
		return "", fmt.Errorf("unsupported id type %T", v)
	}
}

// ApplyDefaults replaces blank fields with their placeholders.
func (r *VictimRecord) ApplyDefaults() {
	setDefault(&r.Name, DefaultName)
	setDefault(&r.City, DefaultCity)
	setDefault(&r.Date, DefaultDate)
	setDefault(&r.Bio, DefaultBio)
	r.NameSecondary = strings.TrimSpace(r.NameSecondary)
}

func setDefault(field *string, def string) {
	if strings.TrimSpace(*field) == "" {
		*field = def
		return
	}
	*field = strings.TrimSpace(*field)
}

// PhotoURL returns the photo link, or "" if the record has none.
func (r *VictimRecord) PhotoURL() string {
	if r.Media == nil {
		return ""
	}
	return strings.TrimSpace(r.Media.Photo)
}

// HasSecondaryName reports whether a secondary-script name should be drawn.
func (r *VictimRecord) HasSecondaryName() bool {
	return strings.TrimSpace(r.NameSecondary) != ""
}

// MetaLine returns the "{city}  |  {date}" line printed under the names.
func (r *VictimRecord) MetaLine() string {
	return r.City + "  |  " + r.Date
}

// VerificationURL returns the page the QR code points to:
// base + "/?id=" + id. The id is query-escaped.
func (r *VictimRecord) VerificationURL(base string) string {
	return strings.TrimRight(base, "/") + "/?id=" + url.QueryEscape(r.ID)
}

// maxStemBytes keeps file names, suffix and extension included, under the
// 255-byte limit of common file systems.
const maxStemBytes = 200

// FileStem returns the file name, without extension, derived from id.
// Letters, digits, '-', '_' and '.' are kept; every other byte, a leading
// '.' included, is written as %XX. Distinct ids therefore give distinct
// stems, up to the length limit. An empty id gives "record-<n>" (1-based).
func FileStem(id string, index int) string {
	if id == "" {
		return fmt.Sprintf("record-%d", index+1)
	}

	var b strings.Builder
	for i := 0; i < len(id); {
		r, size := utf8.DecodeRuneInString(id[i:])
		piece := id[i : i+size]
		keep := r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || (r == '.' && i > 0))
		if !keep {
			piece = escapeBytes(piece)
		}
		if b.Len()+len(piece) > maxStemBytes {
			break
		}
		b.WriteString(piece)
		i += size
	}
	return b.String()
}

func escapeBytes(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		fmt.Fprintf(&b, "%%%02X", s[i])
	}
	return b.String()
}

// StemSet hands out file stems that are unique within a batch. Stems are
// compared without case, so a case-insensitive file system cannot merge
// two records either.
type StemSet map[string]int

// Claim returns the stem for the record at index. When FileStem(id, index)
// is already held by an earlier record, "~<n>" (the 1-based index) is
// appended and holder is the index of that record; otherwise holder is -1.
// FileStem escapes '~', so a suffixed stem never equals a plain one.
func (s StemSet) Claim(id string, index int) (stem string, holder int) {
	stem = FileStem(id, index)
	key := strings.ToLower(stem)
	if first, taken := s[key]; taken {
		stem = fmt.Sprintf("%s~%d", stem, index+1)
		s[strings.ToLower(stem)] = index
		return stem, first
	}
	s[key] = index
	return stem, -1
}
