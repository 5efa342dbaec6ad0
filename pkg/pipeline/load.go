package pipeline

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/lineup/pkg/cache"
	"github.com/matzehuels/lineup/pkg/config"
	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
	"github.com/matzehuels/lineup/pkg/observability"
	"github.com/matzehuels/lineup/pkg/provider"
)

// defaultConfigHash stands in for the hash of a missing definition file.
const defaultConfigHash = "default"

// Load reads the data file, applies the definition file and returns a
// result holding the ranking. The command line sort overrides the sort of
// the definition file.
func Load(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForRank(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnLoadStart(ctx, opts.Input)
	res, err := load(opts)
	rows := 0
	if res != nil {
		rows = res.Data.RowCount()
	}
	observability.Pipeline().OnLoadComplete(ctx, opts.Input, rows, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	res.Stats.Rows = rows
	res.Stats.LoadTime = time.Since(start)
	return res, nil
}

func load(opts Options) (*Result, error) {
	dataHash, err := hashFile(opts.Input)
	if err != nil {
		return nil, err
	}
	data, err := provider.LoadFile(opts.Input, opts.InferOptions())
	if err != nil {
		return nil, err
	}

	file := &config.File{Ranking: config.RankingSpec{Rank: true}}
	configHash := defaultConfigHash
	if opts.Config != "" {
		if configHash, err = hashFile(opts.Config); err != nil {
			return nil, err
		}
		if file, err = config.Load(opts.Config); err != nil {
			return nil, err
		}
	}

	reg, err := file.Registry(data.Descriptors()...)
	if err != nil {
		return nil, err
	}
	r, err := file.Build(reg, data, model.WithLogger(opts.Logger))
	if err != nil {
		return nil, err
	}
	if err := applySort(r, opts.Sort, opts.Direction); err != nil {
		return nil, err
	}

	opts.Logger.Debug("loaded data", "input", opts.Input, "rows", data.RowCount(), "columns", len(data.Columns()))
	return &Result{
		Data:       data,
		Ranking:    r,
		Registry:   reg,
		DataHash:   dataHash,
		ConfigHash: configHash,
		Artifacts:  make(map[string][]byte),
	}, nil
}

func hashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return cache.Hash(data), nil
}

// applySort sorts r by the column named name. An empty name keeps the
// current criterion, but a direction alone still applies to it.
func applySort(r *model.Ranking, name, dir string) error {
	col := r.SortCriterion().Column
	if name != "" {
		var ok bool
		if col, ok = FindColumn(r, name); !ok {
			return errors.New(errors.ErrCodeColumnNotFound, "no column %q to sort by", name)
		}
	}
	if col == nil {
		return nil
	}
	var asc bool
	switch dir {
	case DirectionAsc:
		asc = true
	case DirectionDesc:
		asc = false
	default:
		if name == "" {
			return nil
		}
		asc = col.DefaultSortAscending()
	}
	return r.SortBy(col, asc)
}

// FindColumn returns the first column of r, depth first, whose id,
// descriptor column or title matches name. Titles match case-insensitively.
func FindColumn(r *model.Ranking, name string) (model.Column, bool) {
	flat := r.Flat()
	for _, c := range flat {
		if c.ID() == name || c.Desc().Column == name {
			return c, true
		}
	}
	for _, c := range flat {
		if strings.EqualFold(c.Title(), name) {
			return c, true
		}
	}
	return nil, false
}
