// pkg/model/row.go
package model

import "strings"

// Row maps column names to cell values for a single record.
type Row map[string]Value

// Get returns the cell for a column, or null when the column is absent.
func (r Row) Get(column string) Value {
	if v, ok := r[column]; ok {
		return v
	}
	return Null()
}

// Key builds the join key for a row by concatenating the key column
// values with a ":" separator. Null cells contribute the marker "NULL"
// so rows with missing keys still group deterministically.
func (r Row) Key(keyColumns []string) string {
	parts := make([]string, 0, len(keyColumns))
	for _, column := range keyColumns {
		value := r.Get(column)
		if value.IsNull() {
			parts = append(parts, "NULL")
			continue
		}
		parts = append(parts, value.Str)
	}
	return strings.Join(parts, ":")
}

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	copied := make(Row, len(r))
	for column, value := range r {
		copied[column] = value
	}
	return copied
}

// Dataset is an in-memory table: an ordered column list plus its rows.
// Column order is preserved from the original feed so output files keep
// a stable layout across runs.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// NewDataset creates an empty dataset with the given column order.
func NewDataset(columns []string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// AppendRow adds a row to the dataset.
func (d *Dataset) AppendRow(row Row) {
	d.Rows = append(d.Rows, row)
}

// HasColumn reports whether the dataset carries the named column.
func (d *Dataset) HasColumn(name string) bool {
	for _, column := range d.Columns {
		if column == name {
			return true
		}
	}
	return false
}

// RenameColumns applies old-name to new-name substitutions to the column
// list and to every row. Columns without an entry keep their name. The
// rename is simultaneous: every affected cell is read out before any new
// key is written, so a chain like {"A": "B", "B": "C"} moves each
// column's data exactly once regardless of map iteration order.
func (d *Dataset) RenameColumns(renames map[string]string) {
	if len(renames) == 0 {
		return
	}
	for i, column := range d.Columns {
		if newName, ok := renames[column]; ok {
			d.Columns[i] = newName
		}
	}
	for _, row := range d.Rows {
		moved := make(map[string]Value, len(renames))
		for oldName, newName := range renames {
			if oldName == newName {
				continue
			}
			if value, ok := row[oldName]; ok {
				moved[newName] = value
				delete(row, oldName)
			}
		}
		for newName, value := range moved {
			row[newName] = value
		}
	}
}

// DropColumn removes the named column from the column list and every row.
func (d *Dataset) DropColumn(name string) {
	kept := d.Columns[:0]
	for _, column := range d.Columns {
		if column != name {
			kept = append(kept, column)
		}
	}
	d.Columns = kept
	for _, row := range d.Rows {
		delete(row, name)
	}
}
