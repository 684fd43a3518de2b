package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while the message still reads well on the console.
var (
	// ErrNoInput is returned when the input batch path is empty.
	ErrNoInput = errors.New("no input specified: provide a JSON batch file")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidBaseURL is returned when the verification base URL is not
	// an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute URL such as https://example.org")

	// ErrUnknownTemplate is returned for a template name that is not in Templates.
	ErrUnknownTemplate = errors.New("unknown template: must be bilingual or classic")

	// ErrInvalidFontSizes is returned when the biography ladder is empty,
	// contains a non-positive size, or is not strictly descending.
	ErrInvalidFontSizes = errors.New("invalid font sizes: must be positive and strictly descending")

	// ErrInvalidImageZone is returned when an image zone override is negative.
	ErrInvalidImageZone = errors.New("invalid image zone: width and height must be non-negative")

	// ErrInvalidTimeout is returned when the fetch timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the fetch concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to read photos without a limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingProxy is returned when both --tor and --proxy are given.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --tor and --proxy cannot be used together")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be text or json")
)
