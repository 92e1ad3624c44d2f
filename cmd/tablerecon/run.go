package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/compare"
	"github.com/tablerecon/tablerecon/pkg/config"
	"github.com/tablerecon/tablerecon/pkg/logging"
	"github.com/tablerecon/tablerecon/pkg/mapping"
	"github.com/tablerecon/tablerecon/pkg/model"
	"github.com/tablerecon/tablerecon/pkg/report"
	"github.com/tablerecon/tablerecon/pkg/rules"
	"github.com/tablerecon/tablerecon/pkg/runner"
	"github.com/tablerecon/tablerecon/pkg/table"
)

var (
	runColumnDetail bool
	runArchive      bool
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run SOURCE:TABLE1,TABLE2 [SOURCE:ALL ...]",
	Short: "Reconcile table feeds against the reference warehouse",
	Long: `Reconciles every named table. Each target names an operational source and
its tables; ALL expands to every feed file under the source's input
directory. Results land in the output tree as a per-run report plus
UNIQUE and DUPLICATES row exports per table.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReconciliation,
}

func init() {
	runCmd.Flags().BoolVar(&runColumnDetail, "column-detail", true, "include per-column overlap percentages in the report")
	runCmd.Flags().BoolVar(&runArchive, "archive", false, "upload the output tree to the archive bucket after the run")
	rootCmd.AddCommand(runCmd)
}

func runReconciliation(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	targets, err := runner.ParseTargets(args)
	if err != nil {
		return err
	}
	jobs, err := runner.ExpandJobs(cfg.InputDir, targets)
	if err != nil {
		return err
	}

	run := model.NewRunContext(cfg.OutputDir, cfg.ReferenceLabel, cfg.Debug)
	logger = logging.WithRun(logger, run.RunID)

	logger.Info("Reconciliation run starting",
		zap.Int("tables", len(jobs)),
		zap.String("input_dir", cfg.InputDir),
		zap.String("output_dir", cfg.OutputDir))

	// A missing or malformed mapping file degrades to an empty mapping;
	// tables then compare without configuration and get flagged.
	m, err := mapping.Load(cfg.MappingFile, logger)
	if err != nil {
		logger.Warn("Continuing without table configuration", zap.Error(err))
	}

	engine := rules.NewEngine(logger, cfg.NullSentinels)
	builder := table.NewBuilder(logger, m, engine, cfg.LegacySources)
	comparer := compare.NewComparer(logger, run.RunID)
	writer := report.NewWriter(logger, &run, runColumnDetail)

	summary, err := runner.NewRunner(logger, cfg, builder, comparer, writer).Run(cmd.Context(), jobs)
	if err != nil {
		return err
	}

	if len(summary.SucceededTables) > 0 {
		logger.Info("Report written", zap.String("path", writer.Path()))
	}

	if runArchive || cfg.ArchiveEnabled {
		if err := archiveRun(cmd.Context(), logger, &run); err != nil {
			return err
		}
	}

	if len(summary.FailedTables) > 0 {
		return fmt.Errorf("%d of %d tables failed", len(summary.FailedTables), summary.TotalTables)
	}
	return nil
}

// archiveRun uploads the run's output tree to the configured bucket
func archiveRun(ctx context.Context, logger *zap.Logger, run *model.RunContext) error {
	acfg, err := config.LoadArchiveConfig()
	if err != nil {
		return fmt.Errorf("failed to load archive configuration: %w", err)
	}

	client, err := report.NewArchiveClient(acfg)
	if err != nil {
		return fmt.Errorf("failed to create archive client: %w", err)
	}

	archiver := report.NewArchiver(logger, client, acfg.Bucket, acfg.Prefix)
	uploaded, err := archiver.ArchiveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to archive run output: %w", err)
	}

	logger.Info("Run output archived",
		zap.Int("objects", uploaded),
		zap.String("bucket", acfg.Bucket))
	return nil
}
