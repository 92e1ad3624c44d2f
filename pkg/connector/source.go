// pkg/connector/source.go
package connector

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/config"
)

// SourceConnector implements the DatabaseConnector interface for an
// operational source database (Postgres or SQL Server)
type SourceConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	cfg    *config.SourceDBConfig
}

// NewSourceConnector creates and initializes a new source database connector
func NewSourceConnector(ctx context.Context, cfg *config.SourceDBConfig) (*SourceConnector, error) {
	logger := zap.L().Named("source-connector")

	// Log connection attempt
	logger.Info("Connecting to source database",
		zap.String("driver", cfg.Driver),
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	// Open database connection
	connStr := cfg.ConnectionString()
	db, err := sqlx.Open(cfg.Driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s connection: %w", cfg.Driver, err)
	}

	// Configure connection pool
	ApplyConnectionSettings(
		db.DB,
		cfg.MaxOpenConns,
		cfg.MaxIdleConns,
		cfg.ConnMaxLifetime,
		cfg.ConnMaxIdleTime,
	)

	// Set statement timeout if configured. SQL Server has no session-level
	// equivalent; query timeouts there rely on context deadlines.
	if cfg.Driver == config.DriverPostgres && cfg.QueryTimeout > 0 {
		_, err = db.ExecContext(
			ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.QueryTimeout.Milliseconds()),
		)
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	// Verify connection
	if err := PingWithTimeout(ctx, db.DB, 5*time.Second); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	connector := &SourceConnector{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}

	LogConnectionStats(logger, cfg.Database, db.DB)
	return connector, nil
}

// DB returns the underlying database handle
func (c *SourceConnector) DB() *sqlx.DB {
	return c.db
}

// Validate verifies the source database connection
func (c *SourceConnector) Validate(ctx context.Context) error {
	versionQuery := "SELECT version()"
	if c.cfg.Driver == config.DriverSQLServer {
		versionQuery = "SELECT @@VERSION"
	}

	var version string
	err := c.db.QueryRowContext(ctx, versionQuery).Scan(&version)
	if err != nil {
		return fmt.Errorf("failed to query %s version: %w", c.cfg.Driver, err)
	}

	c.logger.Info("Connected to source database",
		zap.String("driver", c.cfg.Driver),
		zap.String("version", version),
		zap.String("database", c.cfg.Database),
		zap.String("host", c.cfg.Host),
		zap.Int("port", c.cfg.Port))

	return nil
}

// Close closes the database connection
func (c *SourceConnector) Close() error {
	c.logger.Info("Closing source database connection")
	LogConnectionStats(c.logger, c.cfg.Database, c.db.DB)
	return c.db.Close()
}
