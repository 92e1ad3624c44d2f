// pkg/compare/join.go
package compare

import (
	"github.com/tablerecon/tablerecon/pkg/model"
)

// MatchedPair is one matched source/reference row pair. Matching means
// the join key is present on both sides; the rows' non-key columns can
// still disagree, which is the Overlap Analyzer's business.
type MatchedPair struct {
	Key       string
	Source    model.Row
	Reference model.Row
}

// JoinResult partitions both datasets by join key. Duplicate keys expand
// the matched set: every source row in a key group pairs with every
// reference row in the same group.
type JoinResult struct {
	Matched       []MatchedPair
	SourceOnly    []model.Row
	ReferenceOnly []model.Row

	// Duplicates flag, per side, every row whose key occurs more than
	// once within that side, computed independently of the other side
	SourceDuplicates    []model.Row
	ReferenceDuplicates []model.Row

	// Per-side matched row counts. Unlike len(Matched) these never
	// double-count a row, so |matched source rows| + |source-only| is
	// always the source dataset's size, and likewise for the reference.
	MatchedSourceRows    int
	MatchedReferenceRows int
}

// Join performs the key-only outer join between the two datasets. Rows
// are matched solely on primary-key value equality. An empty key joins
// every row against every row; callers flag that as degraded before
// getting here.
func Join(source, reference *model.Dataset, primaryKey []string) *JoinResult {
	sourceKeys, sourceGroups := groupByKey(source, primaryKey)
	referenceKeys, referenceGroups := groupByKey(reference, primaryKey)

	result := &JoinResult{}

	for _, key := range sourceKeys {
		sourceRows := sourceGroups[key]
		referenceRows, ok := referenceGroups[key]
		if !ok {
			result.SourceOnly = append(result.SourceOnly, sourceRows...)
			continue
		}
		result.MatchedSourceRows += len(sourceRows)
		for _, s := range sourceRows {
			for _, r := range referenceRows {
				result.Matched = append(result.Matched, MatchedPair{Key: key, Source: s, Reference: r})
			}
		}
	}

	for _, key := range referenceKeys {
		referenceRows := referenceGroups[key]
		if _, ok := sourceGroups[key]; !ok {
			result.ReferenceOnly = append(result.ReferenceOnly, referenceRows...)
			continue
		}
		result.MatchedReferenceRows += len(referenceRows)
	}

	for _, key := range sourceKeys {
		if rows := sourceGroups[key]; len(rows) > 1 {
			result.SourceDuplicates = append(result.SourceDuplicates, rows...)
		}
	}
	for _, key := range referenceKeys {
		if rows := referenceGroups[key]; len(rows) > 1 {
			result.ReferenceDuplicates = append(result.ReferenceDuplicates, rows...)
		}
	}

	return result
}

// groupByKey buckets a dataset's rows by join key, returning the keys in
// first-appearance order so every partition comes out in a stable order.
func groupByKey(ds *model.Dataset, primaryKey []string) ([]string, map[string][]model.Row) {
	keys := make([]string, 0, len(ds.Rows))
	groups := make(map[string][]model.Row, len(ds.Rows))

	for _, row := range ds.Rows {
		key := row.Key(primaryKey)
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], row)
	}

	return keys, groups
}
