// Package ingest implements the incremental-ingestion core: watermark
// resolution, delta fetch windowing, and reconciliation of scraped and
// fetched records into the store.
//
// The three pieces cooperate per entity: the watermark resolver asks the
// store for the newest persisted date, the window computation turns that
// into a fetch range (or an empty one, making same-day reruns no-ops),
// and the loaders merge the fetched rows back in. Companies are
// insert-or-touch (metadata is immutable after first sighting, only the
// ingestion timestamp moves); price bars are append-only, protected by
// the (ticker, date) constraint rather than upsert logic.
//
// Processing is sequential: one entity, one file, one transaction at a
// time. A failed unit is logged and the run moves on.
package ingest
