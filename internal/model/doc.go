// Package model defines the core data structures shared by the poster
// pipeline.
//
// This package contains the following main types:
//   - VictimRecord: one memorial entry read from the JSON batch
//   - Asset: the resolved photo of a record, or the fact that none is usable
//   - Outcome: the per-record result of a run (success, warnings or error)
//   - Summary: the aggregated result of a whole batch
//
// Design decision: models live in their own package so that loader, asset,
// compose, pipeline and report can all use them without import cycles.
// Every type is JSON-serializable for the run report.
package model
