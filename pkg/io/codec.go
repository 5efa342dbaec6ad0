package io

import (
	"bytes"
	"io"

	"github.com/BurntSushi/toml"
	json "github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
)

// Encode writes v to w in format f. v must be a struct or map; BSON needs a
// document at the top level.
func Encode(w io.Writer, v any, f Format) error {
	var err error
	switch f {
	case FormatJSON:
		var data []byte
		if data, err = json.MarshalIndent(v, "", "  "); err == nil {
			_, err = w.Write(append(data, '\n'))
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(v); err == nil {
			err = enc.Close()
		}
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(v)
	case FormatBSON:
		var data []byte
		if data, err = bson.Marshal(v); err == nil {
			_, err = w.Write(data)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown record format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}
	return nil
}

// Decode reads one record in format f from r into v.
func Decode(r io.Reader, v any, f Format) error {
	var err error
	switch f {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(v)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(v)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(v)
	case FormatBSON:
		var buf bytes.Buffer
		if _, err = buf.ReadFrom(r); err == nil {
			err = bson.Unmarshal(buf.Bytes(), v)
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown record format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDump, err, "decode %s", f)
	}
	return nil
}

// WriteRanking encodes a ranking record.
func WriteRanking(w io.Writer, d model.RankingDump, f Format) error {
	return Encode(w, d, f)
}

// ReadRanking decodes a ranking record.
func ReadRanking(r io.Reader, f Format) (model.RankingDump, error) {
	var d model.RankingDump
	if err := Decode(r, &d, f); err != nil {
		return model.RankingDump{}, err
	}
	return d, nil
}

// WriteColumn encodes the record of a single column tree.
func WriteColumn(w io.Writer, d model.Dump, f Format) error {
	return Encode(w, d, f)
}

// ReadColumn decodes the record of a single column tree.
func ReadColumn(r io.Reader, f Format) (model.Dump, error) {
	var d model.Dump
	if err := Decode(r, &d, f); err != nil {
		return model.Dump{}, err
	}
	return d, nil
}

// Convert re-encodes a ranking record from one format to another.
func Convert(r io.Reader, from Format, w io.Writer, to Format) error {
	d, err := ReadRanking(r, from)
	if err != nil {
		return err
	}
	return WriteRanking(w, d, to)
}
