// pkg/compare/compare_test.go
package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/model"
	"github.com/tablerecon/tablerecon/pkg/table"
)

func TestComparerRun(t *testing.T) {
	source := rowsOf([]string{"id", "val"},
		[]string{"1", "A"},
		[]string{"2", "B"},
		[]string{"2", "B2"},
	)
	reference := rowsOf([]string{"id", "val"},
		[]string{"1", "A"},
		[]string{"3", "C"},
	)

	tbl := &table.Table{
		Name:          "ACCOUNTS",
		SourceID:      "DATAVISION",
		PrimaryKey:    []string{"id"},
		Source:        source,
		Reference:     reference,
		CommonColumns: []string{"id", "val"},
	}

	result := NewComparer(zap.NewNop(), "run-1").Run(tbl)

	m := result.Metrics
	assert.Equal(t, "ACCOUNTS", m.Table)
	assert.Equal(t, "DATAVISION", m.SourceID)
	assert.Equal(t, "run-1", m.RunID)
	assert.Equal(t, 3, m.SourceRows)
	assert.Equal(t, 2, m.ReferenceRows)
	assert.Equal(t, 1, m.MatchedPairs)
	assert.Equal(t, 2, m.SourceOnly)
	assert.Equal(t, 1, m.ReferenceOnly)
	assert.Equal(t, 2, m.SourceDuplicates)
	assert.Equal(t, 0, m.ReferenceDuplicates)
	assert.True(t, m.VarianceDefined)
	assert.InDelta(t, 40.0, m.CountVariancePct, 0.0001)
	assert.False(t, m.Degraded)

	require.Len(t, m.Overlap, 1)
	assert.Equal(t, "val", m.Overlap[0].Column)
	assert.InDelta(t, 100.0, m.Overlap[0].Percent, 0.0001)

	assert.Equal(t, []string{"id", "val"}, result.SourceColumns)
	assert.Empty(t, result.Diagnostics)
}

func TestComparerRunEmptyTable(t *testing.T) {
	tbl := &table.Table{
		Name:          "EMPTY",
		SourceID:      "DATAVISION",
		PrimaryKey:    []string{"id"},
		Source:        model.NewDataset([]string{"id", "val"}),
		Reference:     model.NewDataset([]string{"id", "val"}),
		CommonColumns: []string{"id", "val"},
	}

	result := NewComparer(zap.NewNop(), "").Run(tbl)

	assert.False(t, result.Metrics.VarianceDefined)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, model.DiagnosticDivisionByZero, result.Diagnostics[0].Kind)

	require.Len(t, result.Metrics.Overlap, 1)
	assert.True(t, result.Metrics.Overlap[0].NoData)
}

func TestComparerRunCarriesTableDiagnostics(t *testing.T) {
	tbl := &table.Table{
		Name:          "NOCONF",
		SourceID:      "DATAVISION",
		Source:        rowsOf([]string{"val"}, []string{"a"}),
		Reference:     rowsOf([]string{"val"}, []string{"a"}),
		CommonColumns: []string{"val"},
		Degraded:      true,
		Diagnostics: []model.Diagnostic{
			model.NewDiagnostic(model.DiagnosticConfigurationMissing, "no mapping entry matches the table name"),
		},
	}

	result := NewComparer(zap.NewNop(), "").Run(tbl)

	assert.True(t, result.Metrics.Degraded)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, model.DiagnosticConfigurationMissing, result.Diagnostics[0].Kind)
}
