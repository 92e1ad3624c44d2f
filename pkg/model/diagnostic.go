// pkg/model/diagnostic.go
package model

import (
	"fmt"
	"strings"
	"time"
)

// DiagnosticKind classifies the anomalies a reconciliation pass can hit
type DiagnosticKind int

const (
	// Diagnostic kinds with increasing severity
	DiagnosticNone DiagnosticKind = iota
	// DiagnosticConfigurationMissing marks a table that ran without any
	// mapping-file entry
	DiagnosticConfigurationMissing
	// DiagnosticUnknownRuleOperation marks a rule whose operation label
	// the engine does not recognize
	DiagnosticUnknownRuleOperation
	// DiagnosticColumnMissingForRule marks a rule addressing a column the
	// target dataset does not carry
	DiagnosticColumnMissingForRule
	// DiagnosticRuleMissingArgument marks a rule whose operation needs an
	// argument the mapping file did not supply
	DiagnosticRuleMissingArgument
	// DiagnosticAmbiguousConfiguration marks a table name matched by more
	// than one mapping-file key
	DiagnosticAmbiguousConfiguration
	// DiagnosticDivisionByZero marks a ratio that had to fall back to a
	// sentinel because its denominator was zero
	DiagnosticDivisionByZero
	// DiagnosticAcquisitionFailure marks a table whose datasets could not
	// be loaded
	DiagnosticAcquisitionFailure
)

// String returns a string representation of the diagnostic kind
func (k DiagnosticKind) String() string {
	switch k {
	case DiagnosticNone:
		return "None"
	case DiagnosticConfigurationMissing:
		return "ConfigurationMissing"
	case DiagnosticUnknownRuleOperation:
		return "UnknownRuleOperation"
	case DiagnosticColumnMissingForRule:
		return "ColumnMissingForRule"
	case DiagnosticRuleMissingArgument:
		return "RuleMissingArgument"
	case DiagnosticAmbiguousConfiguration:
		return "AmbiguousConfiguration"
	case DiagnosticDivisionByZero:
		return "DivisionByZero"
	case DiagnosticAcquisitionFailure:
		return "AcquisitionFailure"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Diagnostic records a single anomaly observed during a reconciliation
// pass. Diagnostics never abort the run; they travel with the table's
// result and surface in the report.
type Diagnostic struct {
	Kind      DiagnosticKind
	Table     string
	Source    string
	Column    string
	RuleOp    string
	Message   string
	Timestamp time.Time
}

// NewDiagnostic creates a diagnostic with the current timestamp
func NewDiagnostic(kind DiagnosticKind, message string) Diagnostic {
	return Diagnostic{
		Kind:      kind,
		Message:   message,
		Timestamp: time.Now(),
	}
}

// WithTable adds table and origin information to the diagnostic
func (d Diagnostic) WithTable(source, table string) Diagnostic {
	d.Source = source
	d.Table = table
	return d
}

// WithColumn adds the affected column to the diagnostic
func (d Diagnostic) WithColumn(column string) Diagnostic {
	d.Column = column
	return d
}

// WithRule adds the offending rule's operation label to the diagnostic
func (d Diagnostic) WithRule(op string) Diagnostic {
	d.RuleOp = op
	return d
}

// String returns a formatted diagnostic message
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] ", d.Kind))

	if d.Source != "" && d.Table != "" {
		sb.WriteString(fmt.Sprintf("Table: %s.%s ", d.Source, d.Table))
	} else if d.Table != "" {
		sb.WriteString(fmt.Sprintf("Table: %s ", d.Table))
	}

	if d.Column != "" {
		sb.WriteString(fmt.Sprintf("Column: %s ", d.Column))
	}

	if d.RuleOp != "" {
		sb.WriteString(fmt.Sprintf("Operation: %s ", d.RuleOp))
	}

	sb.WriteString(d.Message)
	return strings.TrimSpace(sb.String())
}
