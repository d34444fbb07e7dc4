// Package csvfs stages scraped and fetched records as CSV files on disk,
// and cleans up files that have aged past the retention window.
//
// The CSV layer is the hand-off point between the fetch binaries and the
// loader: company files are read leniently (a bad row is skipped, the
// rest of the file still loads), price files strictly (a missing column
// or malformed cell fails the whole file).
package csvfs
