// pkg/acquire/csv.go
package acquire

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tablerecon/tablerecon/pkg/model"
)

// DatasetPath returns the feed file location for one side of a table:
// <inputDir>/<sourceID>/<table>.csv
func DatasetPath(inputDir, sourceID, table string) string {
	return filepath.Join(inputDir, sourceID, table+".csv")
}

// LoadCSV reads a dataset from a feed file. The first record is the
// header; an empty field reads back as null because the format cannot
// tell an empty cell from a missing one.
func LoadCSV(path string) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header from %s: %w", path, err)
	}

	ds := model.NewDataset(header)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record from %s: %w", path, err)
		}
		row := make(model.Row, len(header))
		for i, column := range header {
			if record[i] == "" {
				row[column] = model.Null()
				continue
			}
			row[column] = model.NewValue(record[i])
		}
		ds.AppendRow(row)
	}

	return ds, nil
}

// SaveCSV writes a dataset to a feed file, creating parent directories
// as needed. Null cells serialize as empty fields.
func SaveCSV(path string, ds *model.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create dataset file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(ds.Columns); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}

	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, column := range ds.Columns {
			record[i] = row.Get(column).String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row to %s: %w", path, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

// LoadPair loads both sides of a table from the input tree: the source
// feed from the operational system's directory and the reference feed
// from the warehouse label's directory.
func LoadPair(inputDir, sourceID, referenceLabel, tableName string) (*model.Dataset, *model.Dataset, error) {
	source, err := LoadCSV(DatasetPath(inputDir, sourceID, tableName))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load source dataset: %w", err)
	}
	reference, err := LoadCSV(DatasetPath(inputDir, referenceLabel, tableName))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load reference dataset: %w", err)
	}
	return source, reference, nil
}
