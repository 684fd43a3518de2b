package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig documents the defaults. Changing one should be intentional.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default base URL", func(t *testing.T) {
		t.Parallel()
		if cfg.BaseURL != "https://iranrevolution.online" {
			t.Errorf("expected default base URL, got '%s'", cfg.BaseURL)
		}
	})

	t.Run("default template is bilingual", func(t *testing.T) {
		t.Parallel()
		if cfg.Template != TemplateBilingual {
			t.Errorf("expected bilingual template, got '%s'", cfg.Template)
		}
	})

	t.Run("default timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 10*time.Second {
			t.Errorf("expected Timeout to be 10s, got %v", cfg.Timeout)
		}
	})

	t.Run("default font ladder is descending from 16 to 8", func(t *testing.T) {
		t.Parallel()
		want := []float64{16, 14, 13, 12, 11, 10, 9, 8}
		if len(cfg.FontSizes) != len(want) {
			t.Fatalf("expected %d sizes, got %d", len(want), len(cfg.FontSizes))
		}
		for i := range want {
			if cfg.FontSizes[i] != want[i] {
				t.Errorf("size %d: expected %v, got %v", i, want[i], cfg.FontSizes[i])
			}
		}
	})

	t.Run("XDG directories", func(t *testing.T) {
		t.Parallel()
		if filepath.Base(cfg.HistoryDir) != AppName {
			t.Errorf("expected history dir to end in %s, got %s", AppName, cfg.HistoryDir)
		}
		if cfg.WorkDir != filepath.Join(XDGCacheDir(), "images") {
			t.Errorf("expected work dir under the cache dir, got %s", cfg.WorkDir)
		}
		if cfg.NoHistory {
			t.Error("expected history to be recorded by default")
		}
	})

	t.Run("font ladder is a copy", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.FontSizes[0] = 99
		if DefaultFontSizes[0] != 16 {
			t.Error("modifying a config must not change DefaultFontSizes")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := NewConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests one validation rule per case.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty input", func(c *Config) { c.InputPath = "" }, ErrNoInput},
		{"empty output", func(c *Config) { c.OutputDir = "" }, ErrNoOutputDir},
		{"relative base URL", func(c *Config) { c.BaseURL = "iranrevolution.online" }, ErrInvalidBaseURL},
		{"empty base URL", func(c *Config) { c.BaseURL = "" }, ErrInvalidBaseURL},
		{"unknown template", func(c *Config) { c.Template = "poster" }, ErrUnknownTemplate},
		{"empty ladder", func(c *Config) { c.FontSizes = nil }, ErrInvalidFontSizes},
		{"ascending ladder", func(c *Config) { c.FontSizes = []float64{8, 10} }, ErrInvalidFontSizes},
		{"repeated size", func(c *Config) { c.FontSizes = []float64{12, 12} }, ErrInvalidFontSizes},
		{"zero size", func(c *Config) { c.FontSizes = []float64{12, 0} }, ErrInvalidFontSizes},
		{"negative image width", func(c *Config) { c.ImageWidth = -1 }, ErrInvalidImageZone},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"tor and proxy", func(c *Config) { c.UseTor = true; c.ProxyAddress = "127.0.0.1:9050" }, ErrConflictingProxy},
		{"json and markdown", func(c *Config) { c.JSONReport = true; c.MarkdownReport = true }, ErrConflictingReportFormats},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, ErrInvalidLogFormat},
		{"single size ladder", func(c *Config) { c.FontSizes = []float64{10} }, nil},
		{"classic template", func(c *Config) { c.Template = TemplateClassic }, nil},
		{"markdown only", func(c *Config) { c.MarkdownReport = true }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestVerificationBase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		want string
	}{
		{"https://iranrevolution.online", "https://iranrevolution.online"},
		{"https://iranrevolution.online/", "https://iranrevolution.online"},
		{"https://example.org/memorial//", "https://example.org/memorial"},
	}

	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			cfg.BaseURL = tt.base
			if got := cfg.VerificationBase(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "none.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("file values are applied", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".posters")
		content := `base_url: https://example.org
template: classic
fetch:
  timeout: 3s
  concurrency: 2
  proxy: 127.0.0.1:9150
layout:
  font_sizes: [12, 10, 8]
  max_image_height: 90
footer:
  caption: "Scan me"
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.BaseURL != "https://example.org" {
			t.Errorf("expected base URL from file, got %s", cfg.BaseURL)
		}
		if cfg.Template != TemplateClassic {
			t.Errorf("expected classic template, got %s", cfg.Template)
		}
		if cfg.Timeout != 3*time.Second {
			t.Errorf("expected 3s timeout, got %v", cfg.Timeout)
		}
		if cfg.Concurrency != 2 {
			t.Errorf("expected concurrency 2, got %d", cfg.Concurrency)
		}
		if cfg.ProxyAddress != "127.0.0.1:9150" {
			t.Errorf("expected proxy from file, got %s", cfg.ProxyAddress)
		}
		if len(cfg.FontSizes) != 3 || cfg.FontSizes[2] != 8 {
			t.Errorf("expected ladder [12 10 8], got %v", cfg.FontSizes)
		}
		if cfg.MaxImageHeight != 90 {
			t.Errorf("expected max image height 90, got %v", cfg.MaxImageHeight)
		}
		if cfg.FooterCaption != "Scan me" {
			t.Errorf("expected footer caption from file, got %q", cfg.FooterCaption)
		}
		// Untouched values keep their defaults.
		if cfg.UserAgent != DefaultUserAgent {
			t.Errorf("expected default user agent, got %s", cfg.UserAgent)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), ".posters")
		if err := os.WriteFile(path, []byte("fetch: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("explicit missing path returns empty", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty path, got %s", got)
		}
	})
}

func TestFileApplyNil(t *testing.T) {
	t.Parallel()

	var cf *File
	cfg := NewConfig()
	cf.Apply(cfg)
	if cfg.Template != DefaultTemplate {
		t.Errorf("expected defaults to survive nil file, got %s", cfg.Template)
	}
}
