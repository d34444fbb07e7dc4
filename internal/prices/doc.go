// Package prices fetches daily OHLC history from a Yahoo-style chart
// endpoint.
//
// The client requests one ticker per call with an explicit [start, end)
// window and converts the JSON column arrays into validated PriceBar
// records. Chart APIs pad their arrays with nulls for non-trading days;
// those entries are dropped during conversion rather than surfacing as
// zero-valued bars.
package prices
