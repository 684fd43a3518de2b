// Package pipeline drives a batch of records through photo resolution,
// composition and output.
//
// Each record becomes a model.Job that passes through a Pipeline of Steps.
// Two pipelines are used per run: the resolve pipeline downloads photos and
// runs concurrently, the render pipeline composes and saves posters and
// runs one record at a time in input order.
//
// Design decision: photos are fetched ahead in parallel because a batch
// spends most of its time waiting on image hosts, while composing stays
// sequential so that files, console lines and the report follow the order
// of the input. Every record yields exactly one Outcome; per-record
// failures never stop the batch.
package pipeline
