// Package main provides the entry point for the posters CLI.
//
// posters turns a JSON backup of memorial records into printable A4 PDF
// posters, one per record, each with a QR code that links to the record's
// verification page.
//
// Usage:
//
//	posters generate [input.json]
//	posters generate --output ./out --tor memorials.json
//
// See --help for all available options.
package main

// main is the entry point for posters.
func main() {
	Execute()
}
