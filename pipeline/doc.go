// Package pipeline coordinates the five-stage ingestion run: fetch,
// parse, chunk, embed, index.
//
// Every stage reads its input from the previous stage's blob namespace and
// writes its output to its own, so any stage can be re-executed on its own
// and its outputs inspected between runs. Completion is tracked per document
// in a manifest of checkpoint marks; with skip-existing enabled, a rerun
// touches only documents whose output is missing or whose input changed.
//
// Within a stage, documents fan out to a bounded worker pool. A failing
// document is recorded in the stage report and the run continues; only an
// unreachable upstream dependency (archive source, index collection) aborts
// a stage, and already-written outputs are preserved either way.
package pipeline
