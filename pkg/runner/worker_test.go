package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/compare"
	"github.com/tablerecon/tablerecon/pkg/mapping"
	"github.com/tablerecon/tablerecon/pkg/model"
	"github.com/tablerecon/tablerecon/pkg/rules"
	"github.com/tablerecon/tablerecon/pkg/table"
)

func writeFeed(t *testing.T, inputDir, owner, tableName, content string) {
	t.Helper()
	path := filepath.Join(inputDir, owner, tableName+".csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeMappingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "column_mappings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestBuilder(t *testing.T) *table.Builder {
	t.Helper()
	path := writeMappingFile(t, `{
		"ORDERS":   {"Columns": {}, "Rules": [], "PK": ["ID"]},
		"INVOICES": {"Columns": {}, "Rules": [], "PK": ["ID"]}
	}`)
	m, err := mapping.Load(path, zap.NewNop())
	require.NoError(t, err)
	engine := rules.NewEngine(zap.NewNop(), nil)
	return table.NewBuilder(zap.NewNop(), m, engine, nil)
}

func newTestWorker(t *testing.T, inputDir string) *Worker {
	t.Helper()
	builder := newTestBuilder(t)
	comparer := compare.NewComparer(zap.NewNop(), "")
	return NewWorker(1, inputDir, "SNOWFLAKE", builder, comparer, zap.NewNop())
}

func TestWorkerProcessJob(t *testing.T) {
	inputDir := t.TempDir()
	writeFeed(t, inputDir, "DATAVISION", "ORDERS", "ID,AMOUNT\n1,10\n2,20\n3,30\n")
	writeFeed(t, inputDir, "SNOWFLAKE", "ORDERS", "ID,AMOUNT\n1,10\n2,25\n")

	w := newTestWorker(t, inputDir)
	outcome := w.ProcessJob(context.Background(), NewTableJob("DATAVISION", "ORDERS"))

	assert.True(t, outcome.Success)
	assert.NoError(t, outcome.Err)
	require.NotNil(t, outcome.Result)
	assert.Equal(t, 3, outcome.Result.Metrics.SourceRows)
	assert.Equal(t, 2, outcome.Result.Metrics.ReferenceRows)
	assert.Equal(t, 2, outcome.Result.Metrics.MatchedPairs)
	assert.Equal(t, 1, outcome.Result.Metrics.SourceOnly)
	assert.Equal(t, 1, outcome.WorkerID)
	assert.False(t, outcome.EndTime.IsZero())

	assert.Equal(t, WorkerStateIdle, w.State())
	assert.Nil(t, w.CurrentJob())
}

func TestWorkerProcessJobMissingFeed(t *testing.T) {
	inputDir := t.TempDir()
	writeFeed(t, inputDir, "DATAVISION", "ORDERS", "ID\n1\n")

	w := newTestWorker(t, inputDir)
	outcome := w.ProcessJob(context.Background(), NewTableJob("DATAVISION", "ORDERS"))

	assert.False(t, outcome.Success)
	require.Error(t, outcome.Err)
	assert.Contains(t, outcome.Err.Error(), "failed to load feeds for DATAVISION.ORDERS")
	assert.Nil(t, outcome.Result)
	require.Len(t, outcome.Diagnostics, 1)
	assert.Equal(t, model.DiagnosticAcquisitionFailure, outcome.Diagnostics[0].Kind)
	assert.Equal(t, "ORDERS", outcome.Diagnostics[0].Table)
}

func TestWorkerProcessJobCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newTestWorker(t, t.TempDir())
	outcome := w.ProcessJob(ctx, NewTableJob("DATAVISION", "ORDERS"))

	assert.False(t, outcome.Success)
	assert.ErrorIs(t, outcome.Err, context.Canceled)
	assert.Empty(t, outcome.Diagnostics)
}

func TestWorkerStart(t *testing.T) {
	inputDir := t.TempDir()
	writeFeed(t, inputDir, "DATAVISION", "ORDERS", "ID\n1\n2\n")
	writeFeed(t, inputDir, "SNOWFLAKE", "ORDERS", "ID\n1\n2\n")

	w := newTestWorker(t, inputDir)

	jobs := make(chan TableJob, 2)
	results := make(chan TableOutcome, 2)
	jobs <- NewTableJob("DATAVISION", "ORDERS")
	jobs <- NewTableJob("DATAVISION", "MISSING")
	close(jobs)

	w.Start(context.Background(), jobs, results)

	first := <-results
	second := <-results
	assert.True(t, first.Success)
	assert.Equal(t, "ORDERS", first.Table)
	assert.False(t, second.Success)
	assert.Equal(t, "MISSING", second.Table)

	assert.Equal(t, WorkerStateCompleted, w.State())
}

func TestWorkerStartCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := newTestWorker(t, t.TempDir())
	jobs := make(chan TableJob)
	results := make(chan TableOutcome)

	w.Start(ctx, jobs, results)

	assert.Equal(t, WorkerStateCompleted, w.State())
}
