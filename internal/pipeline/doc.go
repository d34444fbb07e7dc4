// Package pipeline wires the source adapters, staging layer and
// reconciling loaders into the three pipeline steps (scrape, fetch,
// load) plus retention cleanup. The one-shot binaries and the daemon
// both drive these steps; a step returns an error only when it could
// not run at all or when at least one of its units failed.
package pipeline
