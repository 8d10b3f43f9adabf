// internal/types/kpi_models.go
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// --------------------------------------------
// Cell values for charts and tables
// --------------------------------------------

// Value is a chart/table cell: either a string or a number.
type Value struct {
	str   string
	num   float64
	isNum bool
}

// S returns a string cell.
func S(s string) Value { return Value{str: s} }

// N returns a numeric cell.
func N(n float64) Value { return Value{num: n, isNum: true} }

// I returns a numeric cell from an int.
func I(n int) Value { return N(float64(n)) }

func (v Value) IsNumber() bool { return v.isNum }

func (v Value) Number() float64 { return v.num }

func (v Value) String() string {
	if v.isNum {
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	}
	return v.str
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isNum {
		return json.Marshal(v.num)
	}
	return json.Marshal(v.str)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*v = N(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("value: expected string or number, got %s", string(b))
	}
	*v = S(s)
	return nil
}

// --------------------------------------------
// Chart block
// --------------------------------------------
type ChartKind string

const (
	ColumnChart ChartKind = "ColumnChart"
	LineChart   ChartKind = "LineChart"
	PieChart    ChartKind = "PieChart"
	BarChart    ChartKind = "BarChart"
	AreaChart   ChartKind = "AreaChart"
)

type Axis struct {
	Title    string   `json:"title,omitempty"`
	MinValue *float64 `json:"minValue,omitempty"`
	MaxValue *float64 `json:"maxValue,omitempty"`
}

type ChartArea struct {
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

type ChartOptions struct {
	Title     string     `json:"title,omitempty"`
	PieHole   float64    `json:"pieHole,omitempty"`
	Colors    []string   `json:"colors,omitempty"`
	ChartArea *ChartArea `json:"chartArea,omitempty"`
	VAxis     *Axis      `json:"vAxis,omitempty"`
	HAxis     *Axis      `json:"hAxis,omitempty"`
	CurveType string     `json:"curveType,omitempty"`
	Legend    string     `json:"legend,omitempty"`
}

// ChartSpec is a chart grid; row 0 is the header.
type ChartSpec struct {
	Kind    ChartKind    `json:"chartType"`
	Title   string       `json:"title"`
	Data    [][]Value    `json:"data"`
	Options ChartOptions `json:"options"`
}

// --------------------------------------------
// Table block
// --------------------------------------------

// Row is a structured table row keyed by header, plus numeric shadow fields.
type Row map[string]Value

type TableSpec struct {
	Title   string    `json:"title"`
	Headers []string  `json:"headers"`
	Rows    [][]Value `json:"rows"`
	Data    []Row     `json:"data"`
}

// Validate checks that display rows and structured rows line up.
func (t TableSpec) Validate() error {
	if len(t.Rows) != len(t.Data) {
		return fmt.Errorf("table %q: %d rows but %d data objects", t.Title, len(t.Rows), len(t.Data))
	}
	for i, r := range t.Rows {
		if len(r) != len(t.Headers) {
			return fmt.Errorf("table %q: row %d has %d cells, want %d", t.Title, i, len(r), len(t.Headers))
		}
	}
	return nil
}

// --------------------------------------------
// KPI tiles
// --------------------------------------------
type Trend string

const (
	TrendUp      Trend = "up"
	TrendDown    Trend = "down"
	TrendNeutral Trend = "neutral"
)

type KPI struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Change string `json:"change,omitempty"`
	Trend  Trend  `json:"trend"`
}

// --------------------------------------------
// FINAL output delivered to frontend
// --------------------------------------------
type AnalyticsResponse struct {
	TextResponse string     `json:"textResponse"`
	ChartData    *ChartSpec `json:"chartData,omitempty"`
	TableData    *TableSpec `json:"tableData,omitempty"`
	KPIs         []KPI      `json:"kpis,omitempty"`
}
