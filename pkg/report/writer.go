// pkg/report/writer.go
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/acquire"
	"github.com/tablerecon/tablerecon/pkg/compare"
	"github.com/tablerecon/tablerecon/pkg/model"
)

// Writer owns the run's report file and row exports. The report file is
// truncated on the first append and extended on every following one, so a
// run always produces a single fresh report.
type Writer struct {
	logger         *zap.Logger
	outputDir      string
	referenceLabel string
	columnDetail   bool
	debug          bool
	path           string

	mu      sync.Mutex
	started bool
}

// NewWriter creates a report writer for one run. The report path is derived
// from the run's start time.
func NewWriter(logger *zap.Logger, run *model.RunContext, columnDetail bool) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}

	day := run.StartedAt.Format("20060102")
	stamp := run.StartedAt.Format("150405")

	return &Writer{
		logger:         logger.Named("report"),
		outputDir:      run.OutputDir,
		referenceLabel: run.ReferenceLabel,
		columnDetail:   columnDetail,
		debug:          run.Debug,
		path:           filepath.Join(run.OutputDir, "REPORT_STATS", day, fmt.Sprintf("report%s.txt", stamp)),
	}
}

// Path returns the report file location
func (w *Writer) Path() string {
	return w.path
}

// WriteResult appends one table's report block and writes its four row
// exports. Callers serialize access through the results consumer, but the
// writer locks anyway so a stray concurrent call cannot interleave blocks.
func (w *Writer) WriteResult(res *compare.Result) error {
	if err := w.writeRowExports(res); err != nil {
		return err
	}

	if err := w.appendBlock(w.formatBlock(res)); err != nil {
		return fmt.Errorf("failed to append report block for %s: %w", res.Metrics.Table, err)
	}

	w.logger.Info("Report block written",
		zap.String("table", res.Metrics.Table),
		zap.String("source", res.Metrics.SourceID),
		zap.String("report", w.path))

	return nil
}

func (w *Writer) formatBlock(res *compare.Result) string {
	m := res.Metrics

	primaryKey := "(none)"
	if len(res.PrimaryKey) > 0 {
		primaryKey = strings.Join(res.PrimaryKey, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Table Name: %s\n", m.Table)
	fmt.Fprintf(&b, "Table Source: %s\n", m.SourceID)
	fmt.Fprintf(&b, "Columns Used as Primary Key: %s\n", primaryKey)
	fmt.Fprintf(&b, "Comparison Runtime: %.2f seconds\n", m.Elapsed.Seconds())

	b.WriteString("\n###COUNTS###\n")
	fmt.Fprintf(&b, "Source Record Count: %d\n", m.SourceRows)
	fmt.Fprintf(&b, "Reference Record Count: %d\n", m.ReferenceRows)
	fmt.Fprintf(&b, "Difference Count: %d\n", m.SourceRows-m.ReferenceRows)
	if m.VarianceDefined {
		fmt.Fprintf(&b, "Percent Variance: %.5f%%\n", m.CountVariancePct)
	} else {
		b.WriteString("Percent Variance: undefined\n")
	}
	fmt.Fprintf(&b, "Key Matched Count: %d\n", m.MatchedPairs)
	fmt.Fprintf(&b, "Source Duplicate Count: %d\n", m.SourceDuplicates)
	fmt.Fprintf(&b, "Reference Duplicate Count: %d\n", m.ReferenceDuplicates)
	fmt.Fprintf(&b, "Only in Source Count: %d\n", m.SourceOnly)
	fmt.Fprintf(&b, "Only in Reference Count: %d\n", m.ReferenceOnly)

	b.WriteString("\n---Column Overlap in matching records---\n\n")
	b.WriteString(w.formatOverlap(m.Overlap))
	b.WriteString("\n")

	if len(res.Diagnostics) > 0 {
		b.WriteString("---Diagnostics---\n\n")
		for _, d := range res.Diagnostics {
			fmt.Fprintf(&b, "%s\n", d.String())
		}
		b.WriteString("\n")
	}

	b.WriteString("\n==========\n\n")
	return b.String()
}

func (w *Writer) formatOverlap(overlap []compare.ColumnAgreement) string {
	if !w.columnDetail {
		return "Column details not selected\n"
	}

	var b strings.Builder
	for _, agreement := range overlap {
		if agreement.NoData {
			fmt.Fprintf(&b, "Column %s = no data\n", agreement.Column)
			continue
		}
		if w.debug {
			fmt.Fprintf(&b, "Column %s = %.2f%% (%d of %d matched)\n",
				agreement.Column, agreement.Percent, agreement.Equal, agreement.Total)
			continue
		}
		fmt.Fprintf(&b, "Column %s = %.2f%%\n", agreement.Column, agreement.Percent)
	}
	return b.String()
}

// appendBlock writes the block to the report file, truncating on first use
func (w *Writer) appendBlock(block string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if !w.started {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(w.path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}

	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report block: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close report file: %w", err)
	}

	w.started = true
	return nil
}

// writeRowExports writes the one-side-only and duplicate rows for both
// sides. Files are written even when empty so downstream consumers always
// find them.
func (w *Writer) writeRowExports(res *compare.Result) error {
	exports := []struct {
		category string
		owner    string
		columns  []string
		rows     []model.Row
	}{
		{"UNIQUE", res.Metrics.SourceID, res.SourceColumns, res.Join.SourceOnly},
		{"UNIQUE", w.referenceLabel, res.ReferenceColumns, res.Join.ReferenceOnly},
		{"DUPLICATES", res.Metrics.SourceID, res.SourceColumns, res.Join.SourceDuplicates},
		{"DUPLICATES", w.referenceLabel, res.ReferenceColumns, res.Join.ReferenceDuplicates},
	}

	for _, export := range exports {
		path := filepath.Join(w.outputDir, export.category, export.owner, res.Metrics.Table+".csv")
		ds := &model.Dataset{Columns: export.columns, Rows: export.rows}
		if err := acquire.SaveCSV(path, ds); err != nil {
			return fmt.Errorf("failed to write %s rows for %s: %w",
				strings.ToLower(export.category), res.Metrics.Table, err)
		}
	}

	return nil
}
