// Package config provides configuration structures and utilities for the
// poster generator. It defines the options for loading the memorial batch,
// fetching photos, choosing a page template and writing the run report.
package config
