// Package batch runs one sprite generation pass over every configured group.
//
// The Coordinator classifies each group, packs the packable ones on their own
// goroutine, and handles every settlement on a single control loop. That loop
// is the only owner of the size registry, the completion count, the report,
// and the output files. Once every dispatched group has settled, the shared
// sizes stylesheet is written exactly once.
//
// Group failures (classification, packing, validation, output) are logged and
// recorded in the Report; they never abort the run. Run returns an error only
// when the run lock is held, target folders cannot be cleaned, or ctx ends.
package batch
