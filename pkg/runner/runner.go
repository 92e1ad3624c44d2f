package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/compare"
	"github.com/tablerecon/tablerecon/pkg/config"
	"github.com/tablerecon/tablerecon/pkg/report"
	"github.com/tablerecon/tablerecon/pkg/table"
)

// Runner coordinates the reconciliation of many tables with a worker pool
type Runner struct {
	logger         *zap.Logger
	writer         *report.Writer
	builder        *table.Builder
	comparer       *compare.Comparer
	inputDir       string
	referenceLabel string
	workerCount    int
}

// NewRunner creates a runner. A worker pool size of zero selects a
// count based on the host CPUs.
func NewRunner(logger *zap.Logger, cfg *config.Config, builder *table.Builder, comparer *compare.Comparer, writer *report.Writer) *Runner {
	workerCount := cfg.WorkerPoolSize
	if workerCount <= 0 {
		workerCount = defaultWorkerCount()
	}

	return &Runner{
		logger:         logger.Named("runner"),
		writer:         writer,
		builder:        builder,
		comparer:       comparer,
		inputDir:       cfg.InputDir,
		referenceLabel: cfg.ReferenceLabel,
		workerCount:    workerCount,
	}
}

// defaultWorkerCount sizes the pool from the host CPU count. Table jobs
// are join and hash heavy, so one worker per core with a modest cap.
func defaultWorkerCount() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	if workers > 12 {
		workers = 12
	}
	return workers
}

// Run reconciles the given jobs with a worker pool and returns the run
// summary. Outcomes are consumed by a single goroutine that owns the
// report writer, so report blocks and row exports never interleave.
func (r *Runner) Run(ctx context.Context, jobs []TableJob) (*RunSummary, error) {
	summary := NewRunSummary()
	if len(jobs) == 0 {
		summary.Complete()
		r.logger.Warn("No tables to reconcile")
		return summary, nil
	}

	workerCount := r.workerCount
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}

	r.logger.Info("Starting reconciliation run",
		zap.Int("tables", len(jobs)),
		zap.Int("workers", workerCount))

	// The job queue holds the whole run so submission never blocks.
	jobQueue := make(chan TableJob, len(jobs))
	resultQueue := make(chan TableOutcome, workerCount*2)

	done := make(chan struct{})
	go r.consumeOutcomes(resultQueue, summary, done)

	var wg sync.WaitGroup
	for i := 1; i <= workerCount; i++ {
		worker := NewWorker(i, r.inputDir, r.referenceLabel, r.builder, r.comparer, r.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Start(ctx, jobQueue, resultQueue)
		}()
	}

	for _, job := range jobs {
		jobQueue <- job
	}
	close(jobQueue)

	wg.Wait()
	close(resultQueue)
	<-done

	summary.Complete()

	r.logger.Info("Reconciliation run complete",
		zap.Int("totalTables", summary.TotalTables),
		zap.Int("succeededTables", len(summary.SucceededTables)),
		zap.Int("failedTables", len(summary.FailedTables)),
		zap.Float64("successRate", summary.SuccessRate()),
		zap.Duration("duration", summary.Duration))

	if ctx.Err() != nil {
		return summary, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return summary, nil
}

// consumeOutcomes drains worker outcomes, writes report output for the
// successful ones, and folds everything into the summary. It is the
// only goroutine that touches the writer.
func (r *Runner) consumeOutcomes(outcomes <-chan TableOutcome, summary *RunSummary, done chan<- struct{}) {
	defer close(done)

	for outcome := range outcomes {
		if outcome.Success {
			if err := r.writer.WriteResult(outcome.Result); err != nil {
				r.logger.Error("Failed to write report output",
					zap.String("table", outcome.FullName()),
					zap.Error(err))
				outcome.Success = false
				outcome.Err = fmt.Errorf("failed to write report output: %w", err)
			}
		} else {
			r.logger.Warn("Table failed",
				zap.String("table", outcome.FullName()),
				zap.Error(outcome.Err))
		}
		summary.AddOutcome(outcome)
	}
}
