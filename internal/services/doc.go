// Package services defines shared utilities consumed by the batch coordinator
// and the packing adapters.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs and sprite group names for logging.
//   - Structured error markers plus the Wrap helper that classify a group
//     failure (classification, packing, validation, output) so the run report
//     and log records stay uniform.
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform across groups.
package services
