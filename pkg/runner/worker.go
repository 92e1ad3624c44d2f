package runner

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/acquire"
	"github.com/tablerecon/tablerecon/pkg/compare"
	"github.com/tablerecon/tablerecon/pkg/model"
	"github.com/tablerecon/tablerecon/pkg/table"
)

// WorkerState represents the current state of a worker
type WorkerState string

const (
	WorkerStateIdle      WorkerState = "idle"
	WorkerStateWorking   WorkerState = "working"
	WorkerStateCompleted WorkerState = "completed"
)

// Worker processes table reconciliation jobs from a shared queue
type Worker struct {
	ID             int
	inputDir       string
	referenceLabel string
	builder        *table.Builder
	comparer       *compare.Comparer
	logger         *zap.Logger

	stateLock  sync.RWMutex
	state      WorkerState
	currentJob *TableJob
}

// NewWorker creates a new reconciliation worker
func NewWorker(id int, inputDir, referenceLabel string, builder *table.Builder, comparer *compare.Comparer, logger *zap.Logger) *Worker {
	return &Worker{
		ID:             id,
		inputDir:       inputDir,
		referenceLabel: referenceLabel,
		builder:        builder,
		comparer:       comparer,
		logger:         logger.Named(fmt.Sprintf("worker-%d", id)),
		state:          WorkerStateIdle,
	}
}

// State returns the worker's current state
func (w *Worker) State() WorkerState {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()
	return w.state
}

// setState updates the worker's state with logging
func (w *Worker) setState(state WorkerState) {
	w.stateLock.Lock()
	prevState := w.state
	w.state = state
	w.stateLock.Unlock()

	if prevState != state {
		w.logger.Debug("Worker state changed",
			zap.String("from", string(prevState)),
			zap.String("to", string(state)))
	}
}

// CurrentJob returns the job the worker is processing, if any
func (w *Worker) CurrentJob() *TableJob {
	w.stateLock.RLock()
	defer w.stateLock.RUnlock()
	return w.currentJob
}

func (w *Worker) setCurrentJob(job *TableJob) {
	w.stateLock.Lock()
	defer w.stateLock.Unlock()
	w.currentJob = job
}

// Start begins processing jobs until the queue closes or the context is
// cancelled
func (w *Worker) Start(ctx context.Context, jobs <-chan TableJob, results chan<- TableOutcome) {
	w.logger.Info("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Worker stopping due to context cancellation")
			w.setState(WorkerStateCompleted)
			return
		case job, ok := <-jobs:
			if !ok {
				w.logger.Info("Worker stopping, job queue closed")
				w.setState(WorkerStateCompleted)
				return
			}

			outcome := w.ProcessJob(ctx, job)

			select {
			case results <- *outcome:
			case <-ctx.Done():
				w.logger.Warn("Failed to deliver outcome due to context cancellation",
					zap.String("table", job.FullName()))
				w.setState(WorkerStateCompleted)
				return
			}
		}
	}
}

// ProcessJob runs one table reconciliation end to end: load both feeds,
// build the table, run the comparison pass. A table whose feeds cannot
// be loaded fails with zero output; the run continues with the rest.
func (w *Worker) ProcessJob(ctx context.Context, job TableJob) *TableOutcome {
	w.setCurrentJob(&job)
	w.setState(WorkerStateWorking)
	defer func() {
		w.setCurrentJob(nil)
		w.setState(WorkerStateIdle)
	}()

	outcome := NewTableOutcome(job, w.ID)

	w.logger.Info("Processing table",
		zap.String("jobID", job.ID),
		zap.String("table", job.FullName()))

	if err := ctx.Err(); err != nil {
		outcome.Fail(err)
		outcome.Complete(false)
		return outcome
	}

	source, reference, err := acquire.LoadPair(w.inputDir, job.SourceID, w.referenceLabel, job.Table)
	if err != nil {
		outcome.Fail(fmt.Errorf("failed to load feeds for %s: %w", job.FullName(), err))
		outcome.AddDiagnostic(model.NewDiagnostic(
			model.DiagnosticAcquisitionFailure, err.Error(),
		).WithTable(job.SourceID, job.Table))
		outcome.Complete(false)

		w.logger.Warn("Table skipped, feeds could not be loaded",
			zap.String("table", job.FullName()),
			zap.Error(err))
		return outcome
	}

	tbl := w.builder.Build(job.SourceID, job.Table, source, reference)
	outcome.Result = w.comparer.Run(tbl)
	outcome.Complete(true)

	w.logger.Info("Table reconciled",
		zap.String("table", job.FullName()),
		zap.Int("sourceRows", outcome.Result.Metrics.SourceRows),
		zap.Int("referenceRows", outcome.Result.Metrics.ReferenceRows),
		zap.Int("matchedPairs", outcome.Result.Metrics.MatchedPairs),
		zap.Duration("duration", outcome.Duration))

	return outcome
}
