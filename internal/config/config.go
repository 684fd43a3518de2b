package config

import (
	"net/url"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Most of them mirror the values the printable poster set was first
// produced with, so a run without any flags gives the same pages.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "posters"

	// DefaultInputPath is the memorial backup read when no argument is given.
	DefaultInputPath = "../backups/memorials_backup.json"

	// DefaultOutputDir is the directory that receives one PDF per record.
	DefaultOutputDir = "../printable_posters"

	// DefaultBaseURL is the public site the QR code points to.
	// The QR payload is DefaultBaseURL + "/?id=" + record id.
	DefaultBaseURL = "https://iranrevolution.online"

	// DefaultTemplate selects the bilingual layout with the QR code on the left.
	DefaultTemplate = TemplateBilingual

	// DefaultFontPath is the TrueType face used for the secondary-script name
	// and for bios that contain Persian text. When the file is missing the
	// run falls back to the built-in Helvetica face.
	DefaultFontPath = "Vazir.ttf"

	// DefaultTimeout bounds every photo download. Social CDNs either answer
	// quickly or not at all, so a short timeout keeps a large batch moving.
	DefaultTimeout = 10 * time.Second

	// DefaultConcurrency is the number of photos fetched in parallel.
	// Composition itself always runs in input order.
	DefaultConcurrency = 4

	// DefaultUserAgent is sent with photo requests. Several image hosts
	// refuse requests without a browser-like User-Agent.
	DefaultUserAgent = "Mozilla/5.0"

	// DefaultMaxBodySize limits how much of a photo response is read.
	DefaultMaxBodySize = 20 * 1024 * 1024 // 20MB

	// DefaultMaxImagePixels caps the longest side of a normalized photo.
	// An A4 page at 300 dpi never needs more than this for a 150mm image.
	DefaultMaxImagePixels = 2000

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap when --tor is used.
	DefaultTorStartupTimeout = 3 * time.Minute

	// LogFormatText and LogFormatJSON are the accepted --log-format values.
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Template names accepted by --template.
const (
	// TemplateBilingual places a secondary-script name under the primary
	// name and a left-aligned QR code above a right-aligned footer.
	TemplateBilingual = "bilingual"

	// TemplateClassic is the single-language layout with a smaller image,
	// a centred QR code and a centred footer.
	TemplateClassic = "classic"
)

// DefaultFontSizes is the descending ladder tried when fitting a biography.
var DefaultFontSizes = []float64{16, 14, 13, 12, 11, 10, 9, 8}

// Templates lists every known template name.
var Templates = []string{TemplateBilingual, TemplateClassic}

// Config holds all configuration options for a poster run.
// It is populated from CLI flags and the optional config file and then
// passed by value to the components that need it. Nothing reads it from
// global state.
//
// Design decision: a single flat struct, as the set of options is small.
// Layout overrides that are zero keep the template defaults.
type Config struct {
	// InputPath is the JSON batch of memorial records.
	InputPath string

	// OutputDir receives <id>.pdf for every record. Created if missing.
	OutputDir string

	// WorkDir holds the normalized photos. Defaults to the XDG cache dir.
	WorkDir string

	// BaseURL is the verification site encoded in every QR code.
	BaseURL string

	// Template is one of Templates.
	Template string

	// FontPath is the TrueType file used for script-capable text.
	FontPath string

	// HeaderTitle overrides the title printed at the top of every page.
	HeaderTitle string

	// FooterCaption overrides the caption printed at the bottom of every page.
	FooterCaption string

	// FontSizes overrides the biography font-size ladder. Must be strictly
	// descending and positive when set.
	FontSizes []float64

	// ImageWidth and MaxImageHeight override the photo zone in millimetres.
	ImageWidth     float64
	MaxImageHeight float64

	// Timeout bounds each photo download.
	Timeout time.Duration

	// Concurrency is the number of photos fetched at the same time.
	Concurrency int

	// UserAgent is the User-Agent header sent with photo requests.
	UserAgent string

	// MaxBodySize is the maximum photo response size in bytes.
	MaxBodySize int64

	// MaxImagePixels caps the longest side of a normalized photo.
	MaxImagePixels int

	// ProxyAddress routes photo downloads through a SOCKS5 proxy ("host:port").
	ProxyAddress string

	// UseTor starts an embedded Tor daemon and fetches photos through it.
	// Mutually exclusive with ProxyAddress.
	UseTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded daemon.
	TorStartupTimeout time.Duration

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// JSONReport and MarkdownReport select the run summary format.
	// Both false means a plain text summary.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the run summary to a file instead of stdout.
	// Empty means no summary is written.
	ReportFile string

	// HistoryDir holds the run history database. Defaults to the XDG data dir.
	HistoryDir string

	// NoHistory disables recording the run in the history database.
	NoHistory bool

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is LogFormatText or LogFormatJSON.
	LogFormat string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		InputPath:         DefaultInputPath,
		OutputDir:         DefaultOutputDir,
		WorkDir:           XDGImageDir(),
		HistoryDir:        XDGDataDir(),
		BaseURL:           DefaultBaseURL,
		Template:          DefaultTemplate,
		FontPath:          DefaultFontPath,
		FontSizes:         slices.Clone(DefaultFontSizes),
		Timeout:           DefaultTimeout,
		Concurrency:       DefaultConcurrency,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
		MaxImagePixels:    DefaultMaxImagePixels,
		TorStartupTimeout: DefaultTorStartupTimeout,
		LogFormat:         LogFormatText,
	}
}

// XDGConfigDir returns the XDG config directory for the poster generator.
// On Linux: ~/.config/posters
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir returns the XDG data directory for the poster generator.
// On Linux: ~/.local/share/posters
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for the poster generator.
// On Linux: ~/.cache/posters
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// XDGImageDir returns the directory normalized photos are written to.
func XDGImageDir() string {
	return filepath.Join(XDGCacheDir(), "images")
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return ErrNoInput
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	// The base URL is concatenated with "/?id=", so it must be absolute.
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if !slices.Contains(Templates, c.Template) {
		return ErrUnknownTemplate
	}

	if err := validateFontSizes(c.FontSizes); err != nil {
		return err
	}

	if c.ImageWidth < 0 || c.MaxImageHeight < 0 {
		return ErrInvalidImageZone
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.UseTor && c.ProxyAddress != "" {
		return ErrConflictingProxy
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}

	return nil
}

// VerificationBase returns BaseURL without a trailing slash, so that
// appending "/?id=" never produces a double slash.
func (c *Config) VerificationBase() string {
	base := c.BaseURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base
}

// validateFontSizes checks that a ladder is non-empty, positive and
// strictly descending.
func validateFontSizes(sizes []float64) error {
	if len(sizes) == 0 {
		return ErrInvalidFontSizes
	}
	for i, s := range sizes {
		if s <= 0 {
			return ErrInvalidFontSizes
		}
		if i > 0 && s >= sizes[i-1] {
			return ErrInvalidFontSizes
		}
	}
	return nil
}
