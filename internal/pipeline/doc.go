// Package pipeline runs enrichment over observed-subset units.
//
// A unit is one result table discovered under a data root. Each unit is
// processed to completion (extract → enrich → graph → report) independently
// of the others; the reference groups and universe are shared read-only.
// A failing unit is recorded in the run manifest and does not stop the batch.
package pipeline
