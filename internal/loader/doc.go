// Package loader reads the JSON batch of memorial records.
//
// A batch is either a JSON array of records or the object written by the
// site's backup exporter, which wraps the array in a "memorials" (or
// "data") field. Loading is all-or-nothing: a missing or malformed batch
// is the only fatal error of a run and is reported as a *BatchLoadError.
// Problems with individual records (a duplicate id, a missing id) are
// returned as warnings and never stop the batch.
package loader
