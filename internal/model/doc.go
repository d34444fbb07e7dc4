// Package model defines the shared record types used across the pipeline.
//
// All records are validated at the source-adapter boundary; downstream
// components (loaders, reconcilers, the dashboard) only ever see records
// that already satisfy the table constraints.
//
// Conventions:
//   - Dates: time.Time truncated to midnight UTC (calendar dates)
//   - Timestamps: time.Time in UTC
//   - Dividends and stock splits are nullable (*float64)
package model
