// Package scrape extracts stock-index membership tables from Wikipedia
// pages.
//
// Wikipedia tables are not a stable API: column headers vary by page
// ("Symbol" vs "Ticker", "Security" vs "Company"), so each configured
// index carries a synonym list per canonical field and the scraper
// matches headers case-insensitively against it. The extracted rows are
// validated Company records; anything the page cannot supply surfaces
// here, not in the loaders.
package scrape
