// pkg/report/writer_test.go
package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/acquire"
	"github.com/tablerecon/tablerecon/pkg/compare"
	"github.com/tablerecon/tablerecon/pkg/model"
)

func rowOf(pairs ...string) model.Row {
	row := make(model.Row, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		row[pairs[i]] = model.NewValue(pairs[i+1])
	}
	return row
}

func sampleResult(table, sourceID string) *compare.Result {
	return &compare.Result{
		Metrics: compare.Metrics{
			Table:            table,
			SourceID:         sourceID,
			SourceRows:       3,
			ReferenceRows:    2,
			MatchedPairs:     2,
			SourceOnly:       1,
			CountVariancePct: 40,
			VarianceDefined:  true,
			Overlap: []compare.ColumnAgreement{
				{Column: "AMOUNT", Equal: 1, Total: 2, Percent: 50},
				{Column: "STATUS", Equal: 2, Total: 2, Percent: 100},
			},
			Elapsed: 1250 * time.Millisecond,
		},
		Join: &compare.JoinResult{
			SourceOnly: []model.Row{rowOf("ID", "3", "AMOUNT", "9.99", "STATUS", "OPEN")},
		},
		PrimaryKey:       []string{"ID"},
		SourceColumns:    []string{"ID", "AMOUNT", "STATUS"},
		ReferenceColumns: []string{"ID", "AMOUNT", "STATUS"},
	}
}

func newTestWriter(t *testing.T, columnDetail bool) (*Writer, model.RunContext) {
	t.Helper()
	run := model.NewRunContext(t.TempDir(), "SNOWFLAKE", false)
	return NewWriter(zap.NewNop(), &run, columnDetail), run
}

func TestWriterWriteResult(t *testing.T) {
	writer, run := newTestWriter(t, true)

	require.NoError(t, writer.WriteResult(sampleResult("ORDERS", "DATAVISION")))

	content, err := os.ReadFile(writer.Path())
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "Table Name: ORDERS\n")
	assert.Contains(t, text, "Table Source: DATAVISION\n")
	assert.Contains(t, text, "Columns Used as Primary Key: ID\n")
	assert.Contains(t, text, "Comparison Runtime: 1.25 seconds\n")
	assert.Contains(t, text, "Source Record Count: 3\n")
	assert.Contains(t, text, "Reference Record Count: 2\n")
	assert.Contains(t, text, "Difference Count: 1\n")
	assert.Contains(t, text, "Percent Variance: 40.00000%\n")
	assert.Contains(t, text, "Key Matched Count: 2\n")
	assert.Contains(t, text, "---Column Overlap in matching records---\n")
	assert.Contains(t, text, "Column AMOUNT = 50.00%\n")
	assert.Contains(t, text, "Column STATUS = 100.00%\n")
	assert.True(t, strings.Index(text, "Column AMOUNT") < strings.Index(text, "Column STATUS"),
		"overlap lines keep their worst-first order")
	assert.True(t, strings.HasSuffix(text, "==========\n\n"))

	// Report path is derived from the run start time
	day := run.StartedAt.Format("20060102")
	assert.Equal(t, filepath.Join(run.OutputDir, "REPORT_STATS", day,
		"report"+run.StartedAt.Format("150405")+".txt"), writer.Path())
}

func TestWriterRowExports(t *testing.T) {
	writer, run := newTestWriter(t, true)

	require.NoError(t, writer.WriteResult(sampleResult("ORDERS", "DATAVISION")))

	sourceOnly, err := acquire.LoadCSV(filepath.Join(run.OutputDir, "UNIQUE", "DATAVISION", "ORDERS.csv"))
	require.NoError(t, err)
	require.Len(t, sourceOnly.Rows, 1)
	assert.Equal(t, "3", sourceOnly.Rows[0].Get("ID").Str)

	// Empty partitions still produce header-only files
	for _, rel := range []string{
		filepath.Join("UNIQUE", "SNOWFLAKE", "ORDERS.csv"),
		filepath.Join("DUPLICATES", "DATAVISION", "ORDERS.csv"),
		filepath.Join("DUPLICATES", "SNOWFLAKE", "ORDERS.csv"),
	} {
		ds, err := acquire.LoadCSV(filepath.Join(run.OutputDir, rel))
		require.NoError(t, err, rel)
		assert.Equal(t, []string{"ID", "AMOUNT", "STATUS"}, ds.Columns, rel)
		assert.Empty(t, ds.Rows, rel)
	}
}

func TestWriterTruncatesThenAppends(t *testing.T) {
	writer, _ := newTestWriter(t, true)

	// A stale file from an earlier run at the same path gets truncated
	require.NoError(t, os.MkdirAll(filepath.Dir(writer.Path()), 0o755))
	require.NoError(t, os.WriteFile(writer.Path(), []byte("stale report\n"), 0o644))

	require.NoError(t, writer.WriteResult(sampleResult("ORDERS", "DATAVISION")))
	require.NoError(t, writer.WriteResult(sampleResult("INVOICES", "DATAVISION")))

	content, err := os.ReadFile(writer.Path())
	require.NoError(t, err)
	text := string(content)

	assert.NotContains(t, text, "stale report")
	assert.Contains(t, text, "Table Name: ORDERS\n")
	assert.Contains(t, text, "Table Name: INVOICES\n")
	assert.Equal(t, 2, strings.Count(text, "==========\n"))
	assert.True(t, strings.Index(text, "Table Name: ORDERS") < strings.Index(text, "Table Name: INVOICES"))
}

func TestWriterDebugMatchCounts(t *testing.T) {
	run := model.NewRunContext(t.TempDir(), "SNOWFLAKE", true)
	writer := NewWriter(zap.NewNop(), &run, true)

	require.NoError(t, writer.WriteResult(sampleResult("ORDERS", "DATAVISION")))

	content, err := os.ReadFile(writer.Path())
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "Column AMOUNT = 50.00% (1 of 2 matched)\n")
	assert.Contains(t, text, "Column STATUS = 100.00% (2 of 2 matched)\n")
}

func TestWriterColumnDetailDisabled(t *testing.T) {
	writer, _ := newTestWriter(t, false)

	require.NoError(t, writer.WriteResult(sampleResult("ORDERS", "DATAVISION")))

	content, err := os.ReadFile(writer.Path())
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "Column details not selected\n")
	assert.NotContains(t, text, "Column AMOUNT")
}

func TestWriterUndefinedVarianceAndNoData(t *testing.T) {
	writer, _ := newTestWriter(t, true)

	res := sampleResult("EMPTY", "DATAVISION")
	res.Metrics.SourceRows = 0
	res.Metrics.ReferenceRows = 0
	res.Metrics.VarianceDefined = false
	res.Metrics.Overlap = []compare.ColumnAgreement{{Column: "AMOUNT", NoData: true}}
	res.Join = &compare.JoinResult{}

	require.NoError(t, writer.WriteResult(res))

	content, err := os.ReadFile(writer.Path())
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "Percent Variance: undefined\n")
	assert.Contains(t, text, "Column AMOUNT = no data\n")
}

func TestWriterDiagnosticsBlock(t *testing.T) {
	writer, _ := newTestWriter(t, true)

	res := sampleResult("ORDERS", "DATAVISION")
	res.Diagnostics = []model.Diagnostic{
		model.NewDiagnostic(model.DiagnosticUnknownRuleOperation, "operation squish is not implemented").
			WithTable("DATAVISION", "ORDERS").
			WithColumn("AMOUNT"),
	}

	require.NoError(t, writer.WriteResult(res))

	content, err := os.ReadFile(writer.Path())
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "---Diagnostics---\n")
	assert.Contains(t, text, "operation squish is not implemented")
}

func TestWriterNoPrimaryKey(t *testing.T) {
	writer, _ := newTestWriter(t, true)

	res := sampleResult("ORDERS", "DATAVISION")
	res.PrimaryKey = nil

	require.NoError(t, writer.WriteResult(res))

	content, err := os.ReadFile(writer.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "Columns Used as Primary Key: (none)\n")
}
