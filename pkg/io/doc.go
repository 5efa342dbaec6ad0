// Package io encodes and decodes persisted ranking records.
//
// # Overview
//
// A [model.RankingDump] (or a single [model.Dump]) can be written in four
// formats. All of them carry the same field names, so a record written in
// one format can be re-read from another after conversion:
//
//   - json: indented JSON, the default
//   - yaml: YAML 1.2 documents
//   - toml: TOML tables with one [[columns]] entry per top-level column
//   - bson: a single BSON document, for storage next to MongoDB data
//
// # JSON Format
//
// A ranking with one weighted mean over two number columns:
//
//	{
//	  "id": "3f0c...",
//	  "columns": [
//	    {
//	      "desc": "mean",
//	      "type": "mean",
//	      "width": 200,
//	      "weights": [0.5, 0.5],
//	      "children": [
//	        {"desc": "score", "type": "number", "width": 100},
//	        {"desc": "other", "type": "number", "width": 100}
//	      ]
//	    }
//	  ],
//	  "sortCriterion": {"column": "col3", "asc": false}
//	}
//
// desc references the column descriptor through the factory that restores
// the record; type is checked against the resolved descriptor.
//
// # Import and Export
//
// [ReadRanking] and [WriteRanking] work on streams; [ImportRanking] and
// [ExportRanking] pick the format from the file extension:
//
//	d, err := io.ImportRanking("ranking.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	r, err := model.RestoreRanking(d, rows, registry, nil)
//
// # Concurrency
//
// All functions are safe for concurrent use. Records are plain values and
// hold no reference to live columns.
package io
