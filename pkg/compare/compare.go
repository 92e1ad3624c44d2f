// pkg/compare/compare.go
package compare

import (
	"time"

	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/model"
	"github.com/tablerecon/tablerecon/pkg/table"
)

// Result bundles everything one table's comparison pass hands to the
// writers: the metrics record, the four row partitions, the column
// layouts for serializing them, and any diagnostics raised along the way.
type Result struct {
	Metrics          Metrics
	Join             *JoinResult
	PrimaryKey       []string
	SourceColumns    []string
	ReferenceColumns []string
	Diagnostics      []model.Diagnostic
}

// Comparer runs comparison passes over built tables
type Comparer struct {
	logger *zap.Logger
	runID  string
}

// NewComparer creates a comparer. Every metrics record it produces is
// stamped with the given run id.
func NewComparer(logger *zap.Logger, runID string) *Comparer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Comparer{logger: logger, runID: runID}
}

// Run executes the comparison pass for one table: join, overlap
// analysis, and metrics assembly. It never fails; anomalies surface as
// diagnostics on the result.
func (c *Comparer) Run(tbl *table.Table) *Result {
	start := time.Now()

	join := Join(tbl.Source, tbl.Reference, tbl.PrimaryKey)
	overlap := AnalyzeOverlap(join.Matched, tbl.CommonColumns, tbl.PrimaryKey)

	diagnostics := append([]model.Diagnostic(nil), tbl.Diagnostics...)

	variance, defined := CountVariance(len(tbl.Source.Rows), len(tbl.Reference.Rows))
	if !defined {
		diagnostics = append(diagnostics, model.NewDiagnostic(
			model.DiagnosticDivisionByZero,
			"both datasets are empty, count variance is undefined",
		).WithTable(tbl.SourceID, tbl.Name))
	}

	metrics := Metrics{
		Table:                tbl.Name,
		SourceID:             tbl.SourceID,
		RunID:                c.runID,
		SourceRows:           len(tbl.Source.Rows),
		ReferenceRows:        len(tbl.Reference.Rows),
		MatchedPairs:         len(join.Matched),
		MatchedSourceRows:    join.MatchedSourceRows,
		MatchedReferenceRows: join.MatchedReferenceRows,
		SourceOnly:           len(join.SourceOnly),
		ReferenceOnly:        len(join.ReferenceOnly),
		SourceDuplicates:     len(join.SourceDuplicates),
		ReferenceDuplicates:  len(join.ReferenceDuplicates),
		CountVariancePct:     variance,
		VarianceDefined:      defined,
		Overlap:              overlap,
		Elapsed:              time.Since(start),
		Degraded:             tbl.Degraded,
	}

	c.logger.Info("Comparison pass completed",
		zap.String("table", tbl.Name),
		zap.String("source", tbl.SourceID),
		zap.Int("sourceRows", metrics.SourceRows),
		zap.Int("referenceRows", metrics.ReferenceRows),
		zap.Int("matchedPairs", metrics.MatchedPairs),
		zap.Int("sourceOnly", metrics.SourceOnly),
		zap.Int("referenceOnly", metrics.ReferenceOnly),
		zap.Int("sourceDuplicates", metrics.SourceDuplicates),
		zap.Int("referenceDuplicates", metrics.ReferenceDuplicates),
		zap.Duration("elapsed", metrics.Elapsed),
		zap.Bool("degraded", metrics.Degraded))

	return &Result{
		Metrics:          metrics,
		Join:             join,
		PrimaryKey:       append([]string(nil), tbl.PrimaryKey...),
		SourceColumns:    append([]string(nil), tbl.Source.Columns...),
		ReferenceColumns: append([]string(nil), tbl.Reference.Columns...),
		Diagnostics:      diagnostics,
	}
}
