// Package logging builds the slog loggers used by the CLI and the batch
// coordinator.
//
// Two output formats are supported: a human-readable console format and JSON.
// Helpers in this package stamp standardized keys (component, run_id, group,
// event_type, error_hint) so every group outcome can be filtered the same way
// regardless of which pipeline step produced it.
package logging
