// Package database manages the PostgreSQL connection pool and the schema
// for the companies and ohlc_data tables.
//
// The natural-key and range constraints live in the schema itself: the
// loaders rely on the database to reject duplicate (ticker, index) and
// (ticker, date) pairs and out-of-range OHLC values rather than
// re-checking them on every write path.
package database
