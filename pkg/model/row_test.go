// pkg/model/row_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRowKey(t *testing.T) {
	row := Row{
		"id":     NewValue("42"),
		"region": NewValue("emea"),
		"note":   Null(),
	}

	tests := []struct {
		name       string
		keyColumns []string
		want       string
	}{
		{name: "single column", keyColumns: []string{"id"}, want: "42"},
		{name: "composite key", keyColumns: []string{"id", "region"}, want: "42:emea"},
		{name: "null part becomes marker", keyColumns: []string{"id", "note"}, want: "42:NULL"},
		{name: "missing column becomes marker", keyColumns: []string{"id", "absent"}, want: "42:NULL"},
		{name: "order matters", keyColumns: []string{"region", "id"}, want: "emea:42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, row.Key(tt.keyColumns))
		})
	}
}

func TestRowGet(t *testing.T) {
	row := Row{"a": NewValue("1")}
	assert.Equal(t, NewValue("1"), row.Get("a"))
	assert.True(t, row.Get("missing").IsNull())
}

func TestRowClone(t *testing.T) {
	row := Row{"a": NewValue("1")}
	copied := row.Clone()
	copied["a"] = NewValue("2")

	assert.Equal(t, "1", row.Get("a").Str)
	assert.Equal(t, "2", copied.Get("a").Str)
}

func TestDatasetRenameColumns(t *testing.T) {
	ds := NewDataset([]string{"ID", "FULL_NAME", "CITY"})
	ds.AppendRow(Row{
		"ID":        NewValue("1"),
		"FULL_NAME": NewValue("Ada"),
		"CITY":      NewValue("London"),
	})

	ds.RenameColumns(map[string]string{"FULL_NAME": "NAME"})

	assert.Equal(t, []string{"ID", "NAME", "CITY"}, ds.Columns)
	assert.Equal(t, "Ada", ds.Rows[0].Get("NAME").Str)
	assert.True(t, ds.Rows[0].Get("FULL_NAME").IsNull())
}

func TestDatasetRenameColumnsChained(t *testing.T) {
	// A rename whose target is itself renamed must move each column's
	// data exactly once, on every run, independent of map order.
	renames := map[string]string{"A": "B", "B": "C"}

	for i := 0; i < 200; i++ {
		ds := NewDataset([]string{"A", "B"})
		ds.AppendRow(Row{"A": NewValue("a-val"), "B": NewValue("b-val")})

		ds.RenameColumns(renames)

		assert.Equal(t, []string{"B", "C"}, ds.Columns)
		assert.Equal(t, "a-val", ds.Rows[0].Get("B").Str)
		assert.Equal(t, "b-val", ds.Rows[0].Get("C").Str)
	}
}

func TestDatasetRenameColumnsSwap(t *testing.T) {
	ds := NewDataset([]string{"A", "B"})
	ds.AppendRow(Row{"A": NewValue("1"), "B": NewValue("2")})

	ds.RenameColumns(map[string]string{"A": "B", "B": "A"})

	assert.Equal(t, []string{"B", "A"}, ds.Columns)
	assert.Equal(t, "1", ds.Rows[0].Get("B").Str)
	assert.Equal(t, "2", ds.Rows[0].Get("A").Str)
}

func TestDatasetRenameColumnsNoop(t *testing.T) {
	ds := NewDataset([]string{"A", "B"})
	ds.AppendRow(Row{"A": NewValue("1"), "B": NewValue("2")})

	ds.RenameColumns(nil)
	ds.RenameColumns(map[string]string{"A": "A"})

	assert.Equal(t, []string{"A", "B"}, ds.Columns)
	assert.Equal(t, "1", ds.Rows[0].Get("A").Str)
}

func TestDatasetDropColumn(t *testing.T) {
	ds := NewDataset([]string{"ID", "TSTAMP", "VAL"})
	ds.AppendRow(Row{
		"ID":     NewValue("1"),
		"TSTAMP": NewValue("2024-01-01 00:00:00"),
		"VAL":    NewValue("x"),
	})

	ds.DropColumn("TSTAMP")

	assert.Equal(t, []string{"ID", "VAL"}, ds.Columns)
	assert.False(t, ds.HasColumn("TSTAMP"))
	assert.True(t, ds.Rows[0].Get("TSTAMP").IsNull())
}
