// pkg/model/run.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// RunContext carries the per-run state that every stage shares: a unique
// run ID, the wall-clock start used to stamp output paths, and the
// settings that shape behavior across tables.
type RunContext struct {
	RunID          string    // Unique identifier for this run
	StartedAt      time.Time // Run start, stamps the report path
	OutputDir      string    // Root of the output tree
	ReferenceLabel string    // Directory label for the reference side
	Debug          bool      // Whether report output carries extra match-count detail
}

// NewRunContext creates a run context stamped with a fresh ID and the
// current time.
func NewRunContext(outputDir, referenceLabel string, debug bool) RunContext {
	return RunContext{
		RunID:          uuid.New().String(),
		StartedAt:      time.Now(),
		OutputDir:      outputDir,
		ReferenceLabel: referenceLabel,
		Debug:          debug,
	}
}
