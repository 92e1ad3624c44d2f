// pkg/table/mapper.go
package table

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/tablerecon/tablerecon/pkg/model"
)

// VolatileTimestampColumn is stamped by the load process on the
// warehouse side and never agrees with the source, so it is excluded
// from the comparable column set regardless of configuration.
const VolatileTimestampColumn = "TSTAMP"

// MapSchema renames source-side columns to their reference-side
// equivalents and returns the comparable column set. It must run before
// any rule that addresses a source column by its reference-side name.
func MapSchema(source, reference *model.Dataset, renames map[string]string) []string {
	source.RenameColumns(renames)
	return commonColumns(source, reference)
}

// commonColumns intersects both sides' column names and drops the
// volatile timestamp column. The result keeps source-side column order
// so downstream output is stable across runs.
func commonColumns(source, reference *model.Dataset) []string {
	sourceSet := mapset.NewSet[string](source.Columns...)
	referenceSet := mapset.NewSet[string](reference.Columns...)

	shared := sourceSet.Intersect(referenceSet)
	shared.Remove(VolatileTimestampColumn)

	ordered := make([]string, 0, shared.Cardinality())
	for _, column := range source.Columns {
		if shared.Contains(column) {
			ordered = append(ordered, column)
		}
	}
	return ordered
}
