// pkg/compare/overlap.go
package compare

import (
	"math"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
)

// ColumnAgreement is one column's agreement result across the matched
// row pairs. Percent carries the agreement ratio rounded to two decimal
// places before scaling to a percentage, so the reported granularity is
// whole percents.
type ColumnAgreement struct {
	Column  string
	Equal   int
	Total   int
	Percent float64
	// NoData marks a column that had zero matched pairs to compare
	NoData bool
}

// AnalyzeOverlap compares source against reference values across every
// matched pair, for every common column outside the join key. Columns
// come back sorted ascending by agreement, ties ordered by name, so the
// worst columns lead the report. With zero matched pairs every column
// reports no data instead of dividing by zero.
func AnalyzeOverlap(matched []MatchedPair, commonColumns, primaryKey []string) []ColumnAgreement {
	keyColumns := mapset.NewSet[string](primaryKey...)

	agreements := make([]ColumnAgreement, 0, len(commonColumns))
	for _, column := range commonColumns {
		if keyColumns.Contains(column) {
			continue
		}

		if len(matched) == 0 {
			agreements = append(agreements, ColumnAgreement{Column: column, NoData: true})
			continue
		}

		equal := 0
		for _, pair := range matched {
			if pair.Source.Get(column).Equal(pair.Reference.Get(column)) {
				equal++
			}
		}

		ratio := float64(equal) / float64(len(matched))
		agreements = append(agreements, ColumnAgreement{
			Column:  column,
			Equal:   equal,
			Total:   len(matched),
			Percent: math.Round(ratio * 100),
		})
	}

	sort.Slice(agreements, func(i, j int) bool {
		if agreements[i].Percent != agreements[j].Percent {
			return agreements[i].Percent < agreements[j].Percent
		}
		return agreements[i].Column < agreements[j].Column
	})

	return agreements
}
