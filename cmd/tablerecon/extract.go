package main

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/acquire"
	"github.com/tablerecon/tablerecon/pkg/config"
	"github.com/tablerecon/tablerecon/pkg/connector"
	"github.com/tablerecon/tablerecon/pkg/logging"
)

var (
	extractScript   string
	extractSourceDB bool
	extractTimeout  time.Duration
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Refresh input feeds from the warehouse and source database",
	Long: `Parses the SQL query script and runs every statement against the matching
connection: statements keyed with the reference label go to the warehouse,
the rest go to the operational source database when --source-db is set.
Each result set is written as a feed file under the input tree.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractScript, "script", "", "SQL script path (defaults to the configured script file)")
	extractCmd.Flags().BoolVar(&extractSourceDB, "source-db", false, "also connect to the operational source database")
	extractCmd.Flags().DurationVar(&extractTimeout, "timeout", 5*time.Minute, "per-query timeout")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
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

	script := extractScript
	if script == "" {
		script = cfg.ScriptFile
	}

	factory := connector.NewConnectorFactory(logger)
	snow, source, err := factory.CreateExtractionConnectors(cmd.Context(), extractSourceDB)
	if err != nil {
		return err
	}
	defer snow.Close()

	var operational *sqlx.DB
	if source != nil {
		defer source.Close()
		operational = source.DB()
	}

	if err := snow.Validate(cmd.Context()); err != nil {
		return fmt.Errorf("failed to validate warehouse session: %w", err)
	}
	if source != nil {
		if err := source.Validate(cmd.Context()); err != nil {
			return fmt.Errorf("failed to validate source database session: %w", err)
		}
	}

	extractor := acquire.NewExtractor(logger, snow.DB(), operational, cfg.ReferenceLabel).
		WithTimeout(extractTimeout)

	written, err := extractor.Run(cmd.Context(), script, cfg.InputDir)
	if err != nil {
		return err
	}

	logger.Info("Extract complete",
		zap.Int("feeds", written),
		zap.String("input_dir", cfg.InputDir))
	return nil
}
