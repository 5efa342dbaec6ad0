package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Row is a raw data row keyed by column name. Rows are owned by the data
// provider; columns only read them.
type Row map[string]any

// RowSource gives a ranking access to the raw rows it orders.
type RowSource interface {
	RowCount() int
	Row(index int) Row
}

// Rows is an in-memory RowSource.
type Rows []Row

// RowCount returns the number of rows.
func (r Rows) RowCount() int { return len(r) }

// Row returns the row at index.
func (r Rows) Row(index int) Row { return r[index] }

// toFloat converts a raw cell to a number. Empty strings, nil and
// unparseable values are missing.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return math.NaN(), false
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), !math.IsNaN(float64(x))
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return math.NaN(), false
		}
		return f, true
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return math.NaN(), false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return math.NaN(), false
		}
		return f, true
	}
	return math.NaN(), false
}

// toText converts a raw cell to its string form. nil is missing.
func toText(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, x != ""
	case float64:
		if math.IsNaN(x) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	case interface{ String() string }:
		s := x.String()
		return s, s != ""
	}
	return "", false
}
