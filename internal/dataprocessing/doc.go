// Package dataprocessing implements the statistics pipeline from raw daily
// exports to the ordered period summary.
//
// # Architecture
//
// The pipeline runs as a fixed sequence of stages over one combined record
// table:
//
//  1. DetectSchema: classifies the report variant from the first readable
//     file's columns, once per run
//  2. Ingester: parses every export, tags rows with the filename-stem date
//     and concatenates them
//  3. MultiplierResolver: converts reported order counts into performed unit
//     counts, in place
//  4. FilterRecords: drops the report's own boilerplate and subtotal rows
//  5. Categorizer: assigns every remaining row to one category bucket
//  6. Aggregator: groups by (category, date), evaluates the derived columns,
//     appends per-date TOTAL rows and fixes the ordering
//
// Stage order is part of the contract: multipliers run on the full row set
// before filtering, and categorization happens only on rows that survive the
// filter.
//
// # Error Handling
//
// Individual files that cannot be parsed are skipped with a warning. The run
// fails only when zero files could be ingested, or when the output artifact
// cannot be written.
package dataprocessing
