package io

import (
	"os"

	"github.com/matzehuels/lineup/pkg/errors"
	"github.com/matzehuels/lineup/pkg/model"
)

// ImportRanking reads the ranking record at path. The format follows the
// extension.
func ImportRanking(path string) (model.RankingDump, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return model.RankingDump{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.RankingDump{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return model.RankingDump{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer file.Close()
	return ReadRanking(file, f)
}

// ExportRanking writes d to path. The format follows the extension.
func ExportRanking(d model.RankingDump, path string) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	return WriteRankingFile(d, path, f)
}

// WriteRankingFile writes d to path in format f regardless of the
// extension.
func WriteRankingFile(d model.RankingDump, path string, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", path)
	}
	if err := WriteRanking(file, d, f); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "close %s", path)
	}
	return nil
}
