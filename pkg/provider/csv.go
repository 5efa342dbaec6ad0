package provider

import (
	"encoding/csv"
	stdio "io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
)

// CSVOptions controls LoadCSV.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	InferOptions
}

// LoadCSV reads a CSV document with a header row. Empty cells are left out
// of their row so they read as missing. Cells of fields inferred as numbers
// are stored as float64.
func LoadCSV(name string, r stdio.Reader, opts CSVOptions) (*Local, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == stdio.EOF {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s: no header row", name)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: read header", name)
	}
	fields := headerFields(header)

	var rows model.Rows
	for {
		rec, err := cr.Read()
		if err == stdio.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: read record %d", name, len(rows)+1)
		}
		row := make(model.Row, len(fields))
		for i, cell := range rec {
			if i >= len(fields) {
				break
			}
			if cell = strings.TrimSpace(cell); cell != "" {
				row[fields[i]] = cell
			}
		}
		rows = append(rows, row)
	}

	descs := Infer(rows, fields, opts.InferOptions)
	for _, d := range descs {
		if d.Type == model.KindNumber {
			parseNumbers(rows, d.Column)
		}
	}
	return NewLocal(name, rows, descs...), nil
}

// LoadCSVFile opens path and loads it with LoadCSV. Files ending in .tsv
// default to tab separation.
func LoadCSVFile(path string, opts CSVOptions) (*Local, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()
	if opts.Comma == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
		opts.Comma = '\t'
	}
	return LoadCSV(filepath.Base(path), f, opts)
}

func openError(path string, err error) error {
	if os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	return errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
}

// headerFields names blank header cells after their position and makes
// duplicates unique.
func headerFields(header []string) []string {
	fields := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = "column_" + strconv.Itoa(i+1)
		}
		if n := seen[h]; n > 0 {
			seen[h]++
			h = h + "_" + strconv.Itoa(n+1)
		} else {
			seen[h] = 1
		}
		fields[i] = h
	}
	return fields
}

func parseNumbers(rows model.Rows, field string) {
	for _, r := range rows {
		if f, ok := number(r[field]); ok {
			r[field] = f
		} else {
			delete(r, field)
		}
	}
}
