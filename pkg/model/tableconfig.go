// pkg/model/tableconfig.go
package model

// TableConfig is the per-table reconciliation configuration resolved from
// the mapping file: which columns to rename on the reference side, which
// rewrite rules to run, and which columns form the join key.
type TableConfig struct {
	// ColumnRenames maps source-side column names to their
	// reference-side equivalents
	ColumnRenames map[string]string
	// Rules lists the column rewrites in mapping-file order
	Rules []Rule
	// PrimaryKey lists the columns that form the join key
	PrimaryKey []string
}

// HasPrimaryKey reports whether the config names at least one key column.
func (c TableConfig) HasPrimaryKey() bool {
	return len(c.PrimaryKey) > 0
}

// Empty reports whether the config carries no renames, rules, or key.
func (c TableConfig) Empty() bool {
	return len(c.ColumnRenames) == 0 && len(c.Rules) == 0 && len(c.PrimaryKey) == 0
}
