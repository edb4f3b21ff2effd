// Package main hosts the spritegen CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the structured
// logger, and hands work to the internal packages: generate runs one batch
// through the coordinator, config scaffolds and checks configuration files,
// and cache manages the packed sheet cache.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through a command or flag here.
package main
