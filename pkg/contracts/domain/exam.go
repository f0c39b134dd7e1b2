package domain

import (
	"time"
)

// Schema identifies the report variant produced by the hospital information
// system. It is detected once per run from the first readable file and applied
// uniformly to every file in that run.
type Schema string

const (
	// SchemaDetailed is the report grouped by section and attention type,
	// carrying one numeric column per attention type plus a Total column.
	SchemaDetailed Schema = "detailed"
	// SchemaSimple is the plain report with a single generic exam-count
	// column and no attention-type breakdown.
	SchemaSimple Schema = "simple"
	// SchemaUnrecognized means neither column set was found. The pipeline
	// proceeds with zero numeric columns instead of aborting.
	SchemaUnrecognized Schema = "unrecognized"
)

// NumericColumns lists the canonical numeric columns of the detailed report,
// in the order the source system emits them. Total is always last.
var NumericColumns = []string{
	"REFERENCIA",
	"Hospitalización",
	"Emergencia",
	"URGENTE CONSULTA EXTERNA",
	"Consulta Externa",
	"Sin tipo atención",
	"URGENTE REFERENCIA",
	"URGENTE HOSPITALIZACION",
	"Total",
}

// Column names of the simple report variant.
const (
	SimpleCountColumn = "Cant. Exámenes"
	SectionColumn     = "Seccion"
	SectionAlias      = "Sección"
	ExamColumn        = "Examen"
)

// TotalCategory is the synthetic per-date category holding column-wise sums
// across all real categories.
const TotalCategory = "TOTAL"

// OtherCategory is the fallback bucket for rows whose exam and section are
// both unmapped.
const OtherCategory = "Other"

// ExamRecord is one row of the combined table: the counts of a single
// laboratory exam for one calendar date and clinical section.
//
// Counts is keyed by canonical column name and, after ingestion, always holds
// an entry for every column in NumericColumns, zero-filled where the source
// file lacked the column.
type ExamRecord struct {
	Date       time.Time
	DateRaw    string // filename stem; authoritative when Date is zero
	Seccion    string
	Examen     string
	Multiplier int64
	Category   string
	Counts     map[string]int64
}

// DateKey returns the grouping and display key for the record's date:
// ISO-formatted when the filename stem parsed as a date, the raw stem
// otherwise. ISO text sorts chronologically, so string ordering on the key is
// stable either way.
func (r *ExamRecord) DateKey() string {
	if !r.Date.IsZero() {
		return r.Date.Format("2006-01-02")
	}
	return r.DateRaw
}

// Count returns the named numeric column, zero when absent.
func (r *ExamRecord) Count(column string) int64 {
	return r.Counts[column]
}

// Clone returns a deep copy of the record. The raw-combined export snapshots
// records before filtering and categorization mutate the working set.
func (r *ExamRecord) Clone() ExamRecord {
	c := *r
	c.Counts = make(map[string]int64, len(r.Counts))
	for k, v := range r.Counts {
		c.Counts[k] = v
	}
	return c
}

// SummaryRow is one aggregated row of the period summary, keyed by
// (category, date). Values holds the summed numeric columns plus the derived
// columns, keyed by column name.
type SummaryRow struct {
	Category string
	DateKey  string
	Values   map[string]int64
}

// Value returns the named summary column, zero when absent.
func (s *SummaryRow) Value(column string) int64 {
	return s.Values[column]
}

// Summary is the ordered category/date summary table together with its final
// column order (value columns only; Category and the date key precede them in
// any rendering).
type Summary struct {
	Columns []string
	Rows    []SummaryRow
}
