// Package dashboard serves a read-only JSON API over the companies and
// ohlc_data tables. It exposes membership listings with basic filters
// and recent price history per ticker. There are no mutation routes;
// all writes go through the ingestion pipeline.
package dashboard
