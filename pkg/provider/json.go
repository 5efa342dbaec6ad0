package provider

import (
	stdio "io"
	"os"
	"path/filepath"
	"slices"

	json "github.com/goccy/go-json"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
)

// LoadJSON reads an array of flat objects. Fields are ordered by first
// appearance. Nested values are kept as decoded.
func LoadJSON(name string, r stdio.Reader, opts InferOptions) (*Local, error) {
	var raw []map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: decode rows", name)
	}

	rows := make(model.Rows, len(raw))
	var fields []string
	for i, obj := range raw {
		row := make(model.Row, len(obj))
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		// Object key order is lost in decoding; new fields of one row are
		// added alphabetically.
		slices.Sort(keys)
		for _, k := range keys {
			v := obj[k]
			if num, ok := v.(json.Number); ok {
				f, err := num.Float64()
				if err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s: row %d field %s", name, i, k)
				}
				v = f
			}
			if v != nil {
				row[k] = v
			}
			if !slices.Contains(fields, k) {
				fields = append(fields, k)
			}
		}
		rows[i] = row
	}
	return NewLocal(name, rows, Infer(rows, fields, opts)...), nil
}

// LoadJSONFile opens path and loads it with LoadJSON.
func LoadJSONFile(path string, opts InferOptions) (*Local, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()
	return LoadJSON(filepath.Base(path), f, opts)
}

// LoadFile picks the loader by extension: .json for LoadJSONFile, anything
// else for LoadCSVFile.
func LoadFile(path string, opts InferOptions) (*Local, error) {
	if filepath.Ext(path) == ".json" {
		return LoadJSONFile(path, opts)
	}
	return LoadCSVFile(path, CSVOptions{InferOptions: opts})
}
