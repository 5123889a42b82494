// Package report compiles declarative report requests into parameterized
// aggregate queries over transactions.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Filters narrow the transactions a report aggregates.
type Filters struct {
	DateFrom    string  `json:"date_from,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateTo      string  `json:"date_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CategoryIDs []int64 `json:"category_ids,omitempty" validate:"omitempty,dive,gt=0"`
}

// Aggregation computes Func over Field into the column Alias.
type Aggregation struct {
	Field string `json:"field"`
	Func  string `json:"func"`
	Alias string `json:"alias,omitempty" validate:"omitempty,sqlident"`
}

// Request is an immutable report description.
type Request struct {
	Filters      Filters       `json:"filters"`
	Grouping     []string      `json:"grouping"`
	Aggregations []Aggregation `json:"aggregations" validate:"dive"`
}

// ParseRequest decodes the JSON wire shape, rejecting unknown keys.
func ParseRequest(data []byte) (Request, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var r Request
	if err := dec.Decode(&r); err != nil {
		return Request{}, fmt.Errorf("report: decode request: %w", err)
	}
	return r, nil
}

// Canonical returns the request as compact JSON with a stable key order.
func (r Request) Canonical() ([]byte, error) {
	if r.Grouping == nil {
		r.Grouping = []string{}
	}
	if r.Aggregations == nil {
		r.Aggregations = []Aggregation{}
	}
	return json.Marshal(r)
}
