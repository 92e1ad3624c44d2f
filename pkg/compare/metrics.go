// pkg/compare/metrics.go
package compare

import (
	"math"
	"time"
)

// Metrics is the immutable result record one table's comparison pass
// produces. Nothing here is shared across tables; the report writer is
// the only consumer.
type Metrics struct {
	Table    string
	SourceID string
	// RunID ties the record back to the run that produced it
	RunID string

	SourceRows    int
	ReferenceRows int

	// MatchedPairs counts matched source/reference pairs, which exceeds
	// the per-side counts when both sides duplicate a key
	MatchedPairs         int
	MatchedSourceRows    int
	MatchedReferenceRows int

	SourceOnly          int
	ReferenceOnly       int
	SourceDuplicates    int
	ReferenceDuplicates int

	// CountVariancePct is meaningful only when VarianceDefined is true;
	// with both row counts at zero the variance has no value to report
	CountVariancePct float64
	VarianceDefined  bool

	Overlap []ColumnAgreement
	Elapsed time.Duration

	// Degraded marks a pass that ran without configuration or join key
	Degraded bool
}

// CountVariance computes the percent variance between the two total row
// counts against their mean. The second return is false when both
// counts are zero, where the ratio has no defined value.
func CountVariance(sourceRows, referenceRows int) (float64, bool) {
	if sourceRows == 0 && referenceRows == 0 {
		return 0, false
	}
	mean := (float64(sourceRows) + float64(referenceRows)) / 2
	return math.Abs(float64(sourceRows)-float64(referenceRows)) / mean * 100, true
}
