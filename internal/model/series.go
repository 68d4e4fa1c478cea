package model

import (
	"encoding/json"
	"time"

	"github.com/guregu/null/v5"
)

// Record is one normalized row. The timestamp lives in an explicit Datetime field.
type Record struct {
	Datetime time.Time `json:"Datetime"`
	Open     float64   `json:"Open"`
	High     float64   `json:"High"`
	Low      float64   `json:"Low"`
	Close    float64   `json:"Close"`
	Volume   float64   `json:"Volume"`
}

// NormalizedSeries is a timezone-aware series with optional derived columns.
//
// A column that is absent from the series has not been computed. A present
// column may still hold invalid entries for rows where the value is undefined,
// e.g. the first N-1 rows of an N-period moving average.
type NormalizedSeries struct {
	Symbol   string
	Period   Period
	Interval string
	Location *time.Location
	Records  []Record

	columns map[string][]null.Float
	order   []string
}

// Len returns the number of records.
func (s *NormalizedSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Closes returns a copy of the Close field in series order.
func (s *NormalizedSeries) Closes() []float64 {
	closes := make([]float64, len(s.Records))
	for i, r := range s.Records {
		closes[i] = r.Close
	}
	return closes
}

// Datetimes returns a copy of the Datetime field in series order.
func (s *NormalizedSeries) Datetimes() []time.Time {
	ts := make([]time.Time, len(s.Records))
	for i, r := range s.Records {
		ts[i] = r.Datetime
	}
	return ts
}

// Column returns a copy of the named derived column and whether it is present.
func (s *NormalizedSeries) Column(name string) ([]null.Float, bool) {
	col, ok := s.columns[name]
	if !ok {
		return nil, false
	}
	out := make([]null.Float, len(col))
	copy(out, col)
	return out, true
}

// HasColumn reports whether the named derived column has been computed.
func (s *NormalizedSeries) HasColumn(name string) bool {
	_, ok := s.columns[name]
	return ok
}

// ColumnNames returns derived column names in the order they were first added.
func (s *NormalizedSeries) ColumnNames() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Clone returns a deep copy of the series.
func (s *NormalizedSeries) Clone() *NormalizedSeries {
	out := &NormalizedSeries{
		Symbol:   s.Symbol,
		Period:   s.Period,
		Interval: s.Interval,
		Location: s.Location,
		Records:  make([]Record, len(s.Records)),
		columns:  make(map[string][]null.Float, len(s.columns)),
		order:    make([]string, len(s.order)),
	}
	copy(out.Records, s.Records)
	copy(out.order, s.order)
	for name, col := range s.columns {
		c := make([]null.Float, len(col))
		copy(c, col)
		out.columns[name] = c
	}
	return out
}

// WithColumn returns a copy of the series with the named column set to values.
// An existing column of the same name is replaced in place of its original position.
// The receiver is not modified.
func (s *NormalizedSeries) WithColumn(name string, values []null.Float) *NormalizedSeries {
	out := s.Clone()
	out.setColumn(name, values)
	return out
}

func (s *NormalizedSeries) setColumn(name string, values []null.Float) {
	if s.columns == nil {
		s.columns = make(map[string][]null.Float)
	}
	if _, exists := s.columns[name]; !exists {
		s.order = append(s.order, name)
	}
	col := make([]null.Float, len(values))
	copy(col, values)
	s.columns[name] = col
}

// Tail returns copies of the last n records.
func (s *NormalizedSeries) Tail(n int) []Record {
	if n <= 0 || len(s.Records) == 0 {
		return []Record{}
	}
	if n > len(s.Records) {
		n = len(s.Records)
	}
	out := make([]Record, n)
	copy(out, s.Records[len(s.Records)-n:])
	return out
}

type seriesJSON struct {
	Symbol   string                  `json:"symbol"`
	Period   Period                  `json:"period"`
	Interval string                  `json:"interval"`
	Timezone string                  `json:"timezone"`
	Records  []Record                `json:"records"`
	Columns  map[string][]null.Float `json:"columns"`
}

// MarshalJSON encodes records and derived columns. Undefined entries encode as null.
func (s *NormalizedSeries) MarshalJSON() ([]byte, error) {
	tz := ""
	if s.Location != nil {
		tz = s.Location.String()
	}
	cols := s.columns
	if cols == nil {
		cols = map[string][]null.Float{}
	}
	return json.Marshal(seriesJSON{
		Symbol:   s.Symbol,
		Period:   s.Period,
		Interval: s.Interval,
		Timezone: tz,
		Records:  s.Records,
		Columns:  cols,
	})
}
