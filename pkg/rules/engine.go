// pkg/rules/engine.go
package rules

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/model"
)

// Engine applies mapping-file rules to datasets ahead of comparison. A
// rule rewrites one column on one side; rules run strictly in file order
// because later rules see earlier rules' output.
type Engine struct {
	logger    *zap.Logger
	sentinels []string
}

// NewEngine creates a rule engine. The sentinels are vendor-specific
// tokens that normalize_null folds into the null marker alongside the
// built-in null-like tokens.
func NewEngine(logger *zap.Logger, sentinels []string) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger:    logger,
		sentinels: sentinels,
	}
}

// Apply runs the rule list against the source and reference datasets in
// order. Rules that cannot run are skipped with a diagnostic, never an
// error: an unrecognized operation or a missing target column must not
// abort the table's comparison pass.
func (e *Engine) Apply(
	source, reference *model.Dataset,
	rules []model.Rule,
	sourceID, table string,
) []model.Diagnostic {
	var diagnostics []model.Diagnostic

	for _, rule := range rules {
		target := source
		if rule.Side == model.SideReference {
			target = reference
		}

		if rule.Operation == model.OpUnknown {
			e.logger.Warn("Skipping rule with unrecognized operation",
				zap.String("table", table),
				zap.String("source", sourceID),
				zap.String("operation", rule.RawOp),
				zap.String("column", rule.Column))
			diagnostics = append(diagnostics, model.NewDiagnostic(
				model.DiagnosticUnknownRuleOperation,
				fmt.Sprintf("operation %q is not recognized", rule.RawOp),
			).WithTable(sourceID, table).WithColumn(rule.Column).WithRule(rule.RawOp))
			continue
		}

		if rule.Operation.RequiresParam() && !rule.HasParam {
			e.logger.Warn("Skipping rule with missing argument",
				zap.String("table", table),
				zap.String("source", sourceID),
				zap.String("operation", rule.Operation.String()),
				zap.String("column", rule.Column))
			diagnostics = append(diagnostics, model.NewDiagnostic(
				model.DiagnosticRuleMissingArgument,
				fmt.Sprintf("operation %q needs an argument", rule.Operation),
			).WithTable(sourceID, table).WithColumn(rule.Column).WithRule(rule.Operation.String()))
			continue
		}

		if !target.HasColumn(rule.Column) {
			e.logger.Warn("Skipping rule for absent column",
				zap.String("table", table),
				zap.String("source", sourceID),
				zap.String("side", rule.Side.String()),
				zap.String("operation", rule.Operation.String()),
				zap.String("column", rule.Column))
			diagnostics = append(diagnostics, model.NewDiagnostic(
				model.DiagnosticColumnMissingForRule,
				fmt.Sprintf("column is absent from the %s dataset", rule.Side),
			).WithTable(sourceID, table).WithColumn(rule.Column).WithRule(rule.Operation.String()))
			continue
		}

		e.applyToColumn(target, rule)
	}

	return diagnostics
}

// applyToColumn rewrites one column across every row of the dataset
func (e *Engine) applyToColumn(ds *model.Dataset, rule model.Rule) {
	for _, row := range ds.Rows {
		row[rule.Column] = e.applyOperation(rule, row.Get(rule.Column))
	}
}

// applyOperation dispatches a single cell through the rule's operation
func (e *Engine) applyOperation(rule model.Rule, v model.Value) model.Value {
	switch rule.Operation {
	case model.OpAppend:
		return applyAppend(v, rule.Param)
	case model.OpPrepend:
		return applyPrepend(v, rule.Param)
	case model.OpStrip:
		return applyStrip(v, rule.Param)
	case model.OpCapitalize:
		return applyCapitalize(v)
	case model.OpTruncateDate:
		return applyTruncateDate(v)
	case model.OpCastInt:
		return applyCastInt(v)
	case model.OpRound:
		return applyRound(v, rule.Param)
	case model.OpNormalizeNull:
		return normalizeNull(v, e.sentinels)
	default:
		return v
	}
}

// NormalizeDataset folds null-like tokens in every column of the
// dataset. Feeds from legacy sources write nulls inconsistently, so
// this runs across both sides before comparison when the table's origin
// is one of the designated legacy sources.
func (e *Engine) NormalizeDataset(ds *model.Dataset) {
	for _, row := range ds.Rows {
		for column, value := range row {
			row[column] = normalizeNull(value, e.sentinels)
		}
	}
}
