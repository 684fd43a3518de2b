package model

import "fmt"

// Job carries one record through the pipeline steps.
type Job struct {
	// Index is the 0-based position of the record in the batch.
	Index int

	Record VictimRecord

	// Stem is the file name, without extension, of every file written for
	// the record. The batch processor makes it unique within the batch.
	Stem string

	// Asset is the resolved photo. The zero value renders the placeholder.
	Asset Asset

	Outcome *Outcome

	// Steps lists the steps that completed, in order.
	Steps []string
}

// NewJob creates the job for the record at index. A record the loader
// could not decode starts out failed.
func NewJob(index int, rec VictimRecord) *Job {
	job := &Job{
		Index:   index,
		Record:  rec,
		Stem:    FileStem(rec.ID, index),
		Outcome: NewOutcome(index, rec),
	}
	if rec.Invalid != nil {
		job.Outcome.Fail(fmt.Errorf("%w: %w", ErrInvalidRecord, rec.Invalid))
	}
	return job
}
