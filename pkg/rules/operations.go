// pkg/rules/operations.go
package rules

import (
	"strconv"
	"strings"

	"github.com/tablerecon/tablerecon/pkg/model"
)

// The string operations pass null through untouched: there is no text to
// rewrite, and stringifying the marker would fabricate a value that never
// existed in the feed.

// applyAppend concatenates the parameter after the cell text
func applyAppend(v model.Value, param string) model.Value {
	if v.IsNull() {
		return v
	}
	return model.NewValue(v.Str + param)
}

// applyPrepend concatenates the parameter before the cell text
func applyPrepend(v model.Value, param string) model.Value {
	if v.IsNull() {
		return v
	}
	return model.NewValue(param + v.Str)
}

// applyStrip removes every occurrence of the parameter substring. A cell
// stripped down to nothing becomes null, matching how an empty cell reads
// back from a feed file.
func applyStrip(v model.Value, param string) model.Value {
	if v.IsNull() || param == "" {
		return v
	}
	stripped := strings.ReplaceAll(v.Str, param, "")
	if stripped == "" {
		return model.Null()
	}
	return model.NewValue(stripped)
}

// applyCapitalize uppercases the entire cell text. The label is
// historical; the behavior was never title-casing.
func applyCapitalize(v model.Value) model.Value {
	if v.IsNull() {
		return v
	}
	return model.NewValue(strings.ToUpper(v.Str))
}

// applyTruncateDate keeps the text before the first space, which cuts a
// "YYYY-MM-DD HH:MM:SS" timestamp down to its date. Values without a
// space pass through unchanged.
func applyTruncateDate(v model.Value) model.Value {
	if v.IsNull() {
		return v
	}
	datePart, _, found := strings.Cut(v.Str, " ")
	if !found {
		return v
	}
	return model.NewValue(datePart)
}

// applyCastInt canonicalizes integer text. Leading zero characters are
// stripped first; a null, empty, or non-numeric result counts as 0.
func applyCastInt(v model.Value) model.Value {
	if v.IsNull() {
		return model.NewValue("0")
	}
	trimmed := strings.TrimLeft(v.Str, "0")
	if trimmed == "" {
		return model.NewValue("0")
	}
	parsed, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return model.NewValue("0")
	}
	return model.NewValue(strconv.FormatInt(parsed, 10))
}

// applyRound formats numeric text to a fixed number of decimals. Null,
// the literal token "None", and anything unparseable count as numeric 0.
func applyRound(v model.Value, param string) model.Value {
	decimals, err := strconv.Atoi(strings.TrimSpace(param))
	if err != nil || decimals < 0 {
		decimals = 0
	}

	var parsed float64
	if !v.IsNull() && v.Str != "None" {
		parsed, err = strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			parsed = 0
		}
	}

	return model.NewValue(strconv.FormatFloat(parsed, 'f', decimals, 64))
}

// normalizeNull folds null-like tokens into the canonical null marker:
// the empty string, the literal "NA", any configured vendor sentinel,
// and any value containing "None". Everything else passes through, so
// applying the operation twice is the same as applying it once.
func normalizeNull(v model.Value, sentinels []string) model.Value {
	if v.IsNull() {
		return v
	}
	if v.Str == "" || v.Str == "NA" {
		return model.Null()
	}
	if strings.Contains(v.Str, "None") {
		return model.Null()
	}
	for _, sentinel := range sentinels {
		if v.Str == sentinel {
			return model.Null()
		}
	}
	return v
}
