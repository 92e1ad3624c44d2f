// pkg/table/table.go
package table

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/mapping"
	"github.com/tablerecon/tablerecon/pkg/model"
	"github.com/tablerecon/tablerecon/pkg/rules"
)

// Table is the aggregate a comparison pass runs against: both finalized
// datasets, the comparable column set, and the join key. It is built
// once per table per run and discarded after its report is produced.
type Table struct {
	Name          string
	SourceID      string
	PrimaryKey    []string
	Source        *model.Dataset
	Reference     *model.Dataset
	CommonColumns []string
	// Diagnostics collects construction-time anomalies for the report
	Diagnostics []model.Diagnostic
	// Degraded marks a table that ran without configuration or without
	// a join key; its results are reported but flagged
	Degraded bool
}

// Builder assembles Tables: it resolves the table's configuration,
// aligns schemas, and runs the rule pipeline over both datasets.
type Builder struct {
	logger        *zap.Logger
	mapping       *mapping.Mapping
	engine        *rules.Engine
	legacySources mapset.Set[string]
}

// NewBuilder creates a table builder. legacySources names the origins
// whose feeds write nulls inconsistently; their tables get a full
// normalize_null pass over every column on both sides.
func NewBuilder(logger *zap.Logger, m *mapping.Mapping, engine *rules.Engine, legacySources []string) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		logger:        logger,
		mapping:       m,
		engine:        engine,
		legacySources: mapset.NewSet[string](legacySources...),
	}
}

// Build constructs the Table for one comparison pass. Construction
// never fails: missing configuration, ambiguous configuration, and
// unusable rules degrade the table and surface as diagnostics instead.
func (b *Builder) Build(sourceID, name string, source, reference *model.Dataset) *Table {
	t := &Table{
		Name:      name,
		SourceID:  sourceID,
		Source:    source,
		Reference: reference,
	}

	cfg, matched := b.mapping.Resolve(name)
	switch {
	case len(matched) == 0:
		b.logger.Warn("No mapping entry matches table, comparing without configuration",
			zap.String("table", name),
			zap.String("source", sourceID))
		t.Degraded = true
		t.Diagnostics = append(t.Diagnostics, model.NewDiagnostic(
			model.DiagnosticConfigurationMissing,
			"no mapping entry matches the table name",
		).WithTable(sourceID, name))
	case len(matched) > 1:
		t.Diagnostics = append(t.Diagnostics, model.NewDiagnostic(
			model.DiagnosticAmbiguousConfiguration,
			fmt.Sprintf("table name matched by %d mapping keys %v, using %q", len(matched), matched, matched[len(matched)-1]),
		).WithTable(sourceID, name))
	}

	t.CommonColumns = MapSchema(source, reference, cfg.ColumnRenames)

	t.Diagnostics = append(t.Diagnostics, b.engine.Apply(source, reference, cfg.Rules, sourceID, name)...)

	if b.legacySources.Contains(sourceID) {
		b.logger.Debug("Normalizing nulls across all columns for legacy source",
			zap.String("table", name),
			zap.String("source", sourceID))
		b.engine.NormalizeDataset(source)
		b.engine.NormalizeDataset(reference)
	}

	t.PrimaryKey = cfg.PrimaryKey
	if !cfg.HasPrimaryKey() {
		if len(matched) > 0 {
			t.Diagnostics = append(t.Diagnostics, model.NewDiagnostic(
				model.DiagnosticConfigurationMissing,
				"configuration names no primary key, all rows will share one join key",
			).WithTable(sourceID, name))
		}
		t.Degraded = true
	}

	b.logger.Info("Built table for comparison",
		zap.String("table", name),
		zap.String("source", sourceID),
		zap.Int("sourceRows", len(source.Rows)),
		zap.Int("referenceRows", len(reference.Rows)),
		zap.Int("commonColumns", len(t.CommonColumns)),
		zap.Strings("primaryKey", t.PrimaryKey),
		zap.Bool("degraded", t.Degraded))

	return t
}
