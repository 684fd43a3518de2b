package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".posters"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .posters configuration file.
// Every field is optional; zero values leave the defaults untouched.
type File struct {
	BaseURL  string `yaml:"base_url,omitempty"`
	Output   string `yaml:"output,omitempty"`
	Template string `yaml:"template,omitempty"`
	Font     string `yaml:"font,omitempty"`
	WorkDir  string `yaml:"work_dir,omitempty"`

	Fetch  FetchSection  `yaml:"fetch,omitempty"`
	Layout LayoutSection `yaml:"layout,omitempty"`
	Header TextSection   `yaml:"header,omitempty"`
	Footer TextSection   `yaml:"footer,omitempty"`
}

// FetchSection configures photo downloads.
type FetchSection struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty"`
	Proxy       string        `yaml:"proxy,omitempty"`
	UserAgent   string        `yaml:"user_agent,omitempty"`
	MaxBytes    int64         `yaml:"max_bytes,omitempty"`
	MaxPixels   int           `yaml:"max_pixels,omitempty"`
}

// LayoutSection overrides template geometry.
type LayoutSection struct {
	FontSizes      []float64 `yaml:"font_sizes,omitempty"`
	ImageWidth     float64   `yaml:"image_width,omitempty"`
	MaxImageHeight float64   `yaml:"max_image_height,omitempty"`
}

// TextSection holds a single static text override.
type TextSection struct {
	Title   string `yaml:"title,omitempty"`
	Caption string `yaml:"caption,omitempty"`
}

// LoadConfigFile loads a configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}
	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .posters in the current directory
// 3. Look for .posters in the user's home directory
// 4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Apply copies every non-zero value of the file onto the config.
// CLI flags are applied afterwards by the caller and win over the file.
func (cf *File) Apply(c *Config) {
	if cf == nil {
		return
	}
	setString(&c.BaseURL, cf.BaseURL)
	setString(&c.OutputDir, cf.Output)
	setString(&c.Template, cf.Template)
	setString(&c.FontPath, cf.Font)
	setString(&c.WorkDir, cf.WorkDir)
	setString(&c.ProxyAddress, cf.Fetch.Proxy)
	setString(&c.UserAgent, cf.Fetch.UserAgent)
	setString(&c.HeaderTitle, cf.Header.Title)
	setString(&c.FooterCaption, cf.Footer.Caption)

	if cf.Fetch.Timeout > 0 {
		c.Timeout = cf.Fetch.Timeout
	}
	if cf.Fetch.Concurrency > 0 {
		c.Concurrency = cf.Fetch.Concurrency
	}
	if cf.Fetch.MaxBytes > 0 {
		c.MaxBodySize = cf.Fetch.MaxBytes
	}
	if cf.Fetch.MaxPixels > 0 {
		c.MaxImagePixels = cf.Fetch.MaxPixels
	}
	if len(cf.Layout.FontSizes) > 0 {
		c.FontSizes = slices.Clone(cf.Layout.FontSizes)
	}
	if cf.Layout.ImageWidth > 0 {
		c.ImageWidth = cf.Layout.ImageWidth
	}
	if cf.Layout.MaxImageHeight > 0 {
		c.MaxImageHeight = cf.Layout.MaxImageHeight
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
