// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/config"
)

// ConnectorFactory creates database connectors
type ConnectorFactory struct {
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		logger: logger,
	}
}

// CreateSnowflakeConnector loads the warehouse configuration from the
// environment and connects
func (f *ConnectorFactory) CreateSnowflakeConnector(ctx context.Context) (*SnowflakeConnector, error) {
	f.logger.Info("Creating Snowflake connector")

	cfg, err := config.LoadSnowflakeConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load Snowflake configuration: %w", err)
	}

	connector, err := NewSnowflakeConnector(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Snowflake connector: %w", err)
	}

	return connector, nil
}

// CreateSourceConnector loads the operational database configuration from
// the environment and connects
func (f *ConnectorFactory) CreateSourceConnector(ctx context.Context) (*SourceConnector, error) {
	f.logger.Info("Creating source database connector")

	cfg, err := config.LoadSourceDBConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load source database configuration: %w", err)
	}

	connector, err := NewSourceConnector(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create source connector: %w", err)
	}

	return connector, nil
}

// CreateExtractionConnectors creates the warehouse connector and, when
// requested, the operational source connector
func (f *ConnectorFactory) CreateExtractionConnectors(ctx context.Context, includeSource bool) (*SnowflakeConnector, *SourceConnector, error) {
	snowConn, err := f.CreateSnowflakeConnector(ctx)
	if err != nil {
		return nil, nil, err
	}

	if !includeSource {
		return snowConn, nil, nil
	}

	srcConn, err := f.CreateSourceConnector(ctx)
	if err != nil {
		snowConn.Close() // Clean up the Snowflake connection if the source fails
		return nil, nil, err
	}

	return snowConn, srcConn, nil
}
