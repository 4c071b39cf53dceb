package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// ISODateFormat is the date layout used for every date-valued cell.
const ISODateFormat = "2006-01-02T15:04:05.000Z"

type cellKind uint8

const (
	cellNull cellKind = iota
	cellNumber
	cellString
	cellDate
	cellBool
)

// Cell is a single value of a split-oriented table.
// The zero value is a JSON null.
type Cell struct {
	kind cellKind
	num  float64
	str  string
	date time.Time
	flag bool
}

// Null is the empty cell.
var Null = Cell{}

// Num returns a numeric cell. NaN and infinities become null.
func Num(v float64) Cell {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null
	}
	return Cell{kind: cellNumber, num: v}
}

// Str returns a string cell.
func Str(s string) Cell {
	return Cell{kind: cellString, str: s}
}

// Date returns a date cell serialized in ISO-8601.
func Date(t time.Time) Cell {
	return Cell{kind: cellDate, date: t.UTC()}
}

// Bool returns a boolean cell.
func Bool(b bool) Cell {
	return Cell{kind: cellBool, flag: b}
}

// IsNull reports whether the cell holds no value.
func (c Cell) IsNull() bool {
	return c.kind == cellNull
}

// Float returns the numeric value of the cell.
func (c Cell) Float() (float64, bool) {
	if c.kind != cellNumber {
		return math.NaN(), false
	}
	return c.num, true
}

// String returns the textual form of the cell. Null renders as an empty string.
func (c Cell) String() string {
	switch c.kind {
	case cellNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case cellString:
		return c.str
	case cellDate:
		return c.date.Format(ISODateFormat)
	case cellBool:
		return strconv.FormatBool(c.flag)
	default:
		return ""
	}
}

// Time returns the date value of the cell.
func (c Cell) Time() (time.Time, bool) {
	return c.date, c.kind == cellDate
}

// MarshalJSON implements json.Marshaler.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case cellNumber:
		return json.Marshal(c.num)
	case cellString:
		return json.Marshal(c.str)
	case cellDate:
		return json.Marshal(c.date.Format(ISODateFormat))
	case cellBool:
		return json.Marshal(c.flag)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Strings that parse as ISO dates
// become date cells.
func (c *Cell) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Null
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*c = Num(val)
	case string:
		if t, err := time.Parse(ISODateFormat, val); err == nil {
			*c = Date(t)
		} else {
			*c = Str(val)
		}
	case bool:
		*c = Bool(val)
	default:
		*c = Null
	}
	return nil
}

// Table is a split-oriented table: {columns, index, data}.
// Data holds one row per index entry and one cell per column.
type Table struct {
	Columns []string `json:"columns"`
	Index   []Cell   `json:"index"`
	Data    [][]Cell `json:"data"`
}

// NewTable returns an empty table with the given columns.
func NewTable(columns []string) Table {
	return Table{
		Columns: columns,
		Index:   []Cell{},
		Data:    [][]Cell{},
	}
}

// AppendRow adds a row. The row must have one cell per column.
func (t *Table) AppendRow(index Cell, row []Cell) {
	t.Index = append(t.Index, index)
	t.Data = append(t.Data, row)
}

// Row returns the row whose index renders as name.
func (t Table) Row(name string) ([]Cell, bool) {
	for i, idx := range t.Index {
		if idx.String() == name {
			return t.Data[i], true
		}
	}
	return nil, false
}

// Cell returns the value at the given row name and column.
func (t Table) Cell(row, column string) (Cell, bool) {
	r, ok := t.Row(row)
	if !ok {
		return Null, false
	}
	for j, c := range t.Columns {
		if c == column {
			return r[j], true
		}
	}
	return Null, false
}

// FilterRows keeps the rows listed in names, in the order of names.
// Names without a matching row are dropped; no null rows are added.
func (t Table) FilterRows(names []string) Table {
	out := NewTable(t.Columns)
	for _, name := range names {
		if row, ok := t.Row(name); ok {
			out.AppendRow(Str(name), row)
		}
	}
	return out
}

// Subject names what a statistics table describes.
type Subject int

const (
	SubjectNone Subject = iota
	SubjectPortfolio
	SubjectAsset
)

// ParseSubject maps the catalog's subject string onto a Subject.
// Unknown and empty values map to SubjectNone.
func ParseSubject(s string) Subject {
	switch s {
	case "portfolio":
		return SubjectPortfolio
	case "asset":
		return SubjectAsset
	default:
		return SubjectNone
	}
}

func (s Subject) String() string {
	switch s {
	case SubjectPortfolio:
		return "portfolio"
	case SubjectAsset:
		return "asset"
	default:
		return ""
	}
}

// StatsTable maps metric names (index) to values per portfolio or asset (columns).
type StatsTable struct {
	Subject Subject
	Table
}

// NamedTable pairs a result name with its table.
type NamedTable struct {
	Name  string
	Table Table
}

// ResultBundle is the ordered set of tables returned by a backtest run.
// It serializes as a JSON object whose keys keep insertion order.
type ResultBundle struct {
	Results []NamedTable
}

// Add appends a named table.
func (b *ResultBundle) Add(name string, table Table) {
	b.Results = append(b.Results, NamedTable{Name: name, Table: table})
}

// Get returns the table stored under name.
func (b ResultBundle) Get(name string) (Table, bool) {
	for _, r := range b.Results {
		if r.Name == name {
			return r.Table, true
		}
	}
	return Table{}, false
}

// Names returns the result names in order.
func (b ResultBundle) Names() []string {
	names := make([]string, len(b.Results))
	for i, r := range b.Results {
		names[i] = r.Name
	}
	return names
}

// MarshalJSON implements json.Marshaler.
func (b ResultBundle) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, r := range b.Results {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(r.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		table, err := json.Marshal(r.Table)
		if err != nil {
			return nil, err
		}
		buf.Write(table)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
