package runner

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tablerecon/tablerecon/pkg/compare"
	"github.com/tablerecon/tablerecon/pkg/model"
)

// TableJob represents one table reconciliation job
type TableJob struct {
	ID        string    // Unique job identifier
	SourceID  string    // Operational source the table belongs to
	Table     string    // Table name
	CreatedAt time.Time // Job creation timestamp
}

// NewTableJob creates a new table job
func NewTableJob(sourceID, table string) TableJob {
	return TableJob{
		ID:        uuid.New().String(),
		SourceID:  sourceID,
		Table:     table,
		CreatedAt: time.Now(),
	}
}

// FullName returns the fully qualified table name
func (j TableJob) FullName() string {
	return fmt.Sprintf("%s.%s", j.SourceID, j.Table)
}

// Target names the tables to reconcile for one source. The table list may
// be the single entry ALL, which expands to every feed file in the source's
// input directory.
type Target struct {
	SourceID string
	Tables   []string
}

// ParseTargets parses command line targets of the form SOURCE:TABLE1,TABLE2
func ParseTargets(args []string) ([]Target, error) {
	targets := make([]Target, 0, len(args))

	for _, arg := range args {
		sourceID, tableList, found := strings.Cut(arg, ":")
		sourceID = strings.TrimSpace(sourceID)
		if !found || sourceID == "" {
			return nil, fmt.Errorf("target %q is not of the form SOURCE:TABLE1,TABLE2", arg)
		}

		tables := make([]string, 0)
		for _, table := range strings.Split(tableList, ",") {
			table = strings.TrimSpace(table)
			if table != "" {
				tables = append(tables, table)
			}
		}
		if len(tables) == 0 {
			return nil, fmt.Errorf("target %q names no tables", arg)
		}

		targets = append(targets, Target{SourceID: sourceID, Tables: tables})
	}

	return targets, nil
}

// ExpandJobs turns targets into table jobs, expanding ALL against the feed
// files present under the source's input directory. Table names are
// uppercased to match the feed file convention.
func ExpandJobs(inputDir string, targets []Target) ([]TableJob, error) {
	jobs := make([]TableJob, 0)

	for _, target := range targets {
		for _, table := range target.Tables {
			if !strings.EqualFold(table, "ALL") {
				jobs = append(jobs, NewTableJob(target.SourceID, strings.ToUpper(table)))
				continue
			}

			matches, err := filepath.Glob(filepath.Join(inputDir, target.SourceID, "*.csv"))
			if err != nil {
				return nil, fmt.Errorf("failed to expand ALL for source %s: %w", target.SourceID, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("no feed files found for source %s under %s", target.SourceID, inputDir)
			}

			for _, match := range matches {
				table := strings.TrimSuffix(filepath.Base(match), ".csv")
				jobs = append(jobs, NewTableJob(target.SourceID, strings.ToUpper(table)))
			}
		}
	}

	return jobs, nil
}

// TableOutcome represents the result of one table reconciliation
type TableOutcome struct {
	JobID       string
	SourceID    string
	Table       string
	Success     bool
	Result      *compare.Result
	Err         error
	Diagnostics []model.Diagnostic
	StartTime   time.Time
	EndTime     time.Time
	Duration    time.Duration
	WorkerID    int
}

// NewTableOutcome initializes an outcome for a job
func NewTableOutcome(job TableJob, workerID int) *TableOutcome {
	return &TableOutcome{
		JobID:     job.ID,
		SourceID:  job.SourceID,
		Table:     job.Table,
		StartTime: time.Now(),
		WorkerID:  workerID,
	}
}

// FullName returns the fully qualified table name
func (o *TableOutcome) FullName() string {
	return fmt.Sprintf("%s.%s", o.SourceID, o.Table)
}

// Fail records the error that stopped the job
func (o *TableOutcome) Fail(err error) {
	o.Err = err
}

// AddDiagnostic attaches a diagnostic to the outcome
func (o *TableOutcome) AddDiagnostic(diag model.Diagnostic) {
	o.Diagnostics = append(o.Diagnostics, diag)
}

// Complete marks the outcome and calculates duration
func (o *TableOutcome) Complete(success bool) {
	o.EndTime = time.Now()
	o.Duration = o.EndTime.Sub(o.StartTime)
	o.Success = success
}

// RunSummary represents the final reconciliation run summary
type RunSummary struct {
	TotalTables     int
	SucceededTables []string
	FailedTables    map[string]error
	SourceRows      int
	ReferenceRows   int
	MatchedPairs    int
	DiagnosticCount int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}

// NewRunSummary initializes a new run summary
func NewRunSummary() *RunSummary {
	return &RunSummary{
		StartTime:       time.Now(),
		SucceededTables: make([]string, 0),
		FailedTables:    make(map[string]error),
	}
}

// AddOutcome incorporates a table outcome into the summary
func (s *RunSummary) AddOutcome(outcome TableOutcome) {
	if outcome.Success {
		s.SucceededTables = append(s.SucceededTables, outcome.FullName())
		if outcome.Result != nil {
			s.SourceRows += outcome.Result.Metrics.SourceRows
			s.ReferenceRows += outcome.Result.Metrics.ReferenceRows
			s.MatchedPairs += outcome.Result.Metrics.MatchedPairs
			s.DiagnosticCount += len(outcome.Result.Diagnostics)
		}
		return
	}

	if outcome.Err != nil {
		s.FailedTables[outcome.FullName()] = outcome.Err
	} else {
		s.FailedTables[outcome.FullName()] = fmt.Errorf("unknown error")
	}
	s.DiagnosticCount += len(outcome.Diagnostics)
}

// Complete marks the run as complete and calculates totals
func (s *RunSummary) Complete() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)
	s.TotalTables = len(s.SucceededTables) + len(s.FailedTables)
}

// SuccessRate returns the percentage of tables successfully reconciled
func (s *RunSummary) SuccessRate() float64 {
	if s.TotalTables == 0 {
		return 0
	}
	return float64(len(s.SucceededTables)) / float64(s.TotalTables) * 100
}
