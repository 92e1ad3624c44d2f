// pkg/model/rule.go
package model

import "strings"

// Side identifies which of the two datasets a rule rewrites.
type Side int

const (
	// SideSource targets the system-of-record extract
	SideSource Side = iota
	// SideReference targets the loaded copy being checked
	SideReference
)

// String returns a human-readable representation of the side
func (s Side) String() string {
	switch s {
	case SideSource:
		return "source"
	case SideReference:
		return "reference"
	default:
		return "unknown"
	}
}

// ParseSide maps a mapping-file side label to a Side. The label "source"
// selects the source dataset; "reference" and the legacy labels "snow"
// and "snowflake" select the reference dataset, as does any other label.
func ParseSide(label string) Side {
	if strings.EqualFold(strings.TrimSpace(label), "source") {
		return SideSource
	}
	return SideReference
}

// OpKind enumerates the closed set of rule operations. Dispatch happens
// on this tag, never on raw strings, so an unrecognized operation is
// visible as OpUnknown instead of silently matching nothing.
type OpKind int

const (
	// OpUnknown marks an operation label the engine does not recognize
	OpUnknown OpKind = iota
	// OpAppend adds a suffix to the cell text
	OpAppend
	// OpPrepend adds a prefix to the cell text
	OpPrepend
	// OpStrip removes every occurrence of a substring
	OpStrip
	// OpCapitalize uppercases the entire cell text, not just its head
	OpCapitalize
	// OpTruncateDate cuts a timestamp down to its date prefix
	OpTruncateDate
	// OpCastInt canonicalizes integer text, dropping leading zeros
	OpCastInt
	// OpRound formats numeric text to a fixed number of decimals
	OpRound
	// OpNormalizeNull folds null-like tokens into the null marker
	OpNormalizeNull
)

// String returns the canonical operation label
func (k OpKind) String() string {
	switch k {
	case OpAppend:
		return "append"
	case OpPrepend:
		return "prepend"
	case OpStrip:
		return "strip"
	case OpCapitalize:
		return "capitalize"
	case OpTruncateDate:
		return "truncate_date"
	case OpCastInt:
		return "cast_int"
	case OpRound:
		return "round"
	case OpNormalizeNull:
		return "normalize_null"
	default:
		return "unknown"
	}
}

// RequiresParam reports whether the operation is meaningless without an
// argument from the mapping file.
func (k OpKind) RequiresParam() bool {
	switch k {
	case OpAppend, OpPrepend, OpStrip, OpRound:
		return true
	default:
		return false
	}
}

// ParseOpKind maps an operation label to its OpKind. The legacy labels
// "trunc_date" and "none" are accepted for truncate_date and
// normalize_null. Unrecognized labels map to OpUnknown.
func ParseOpKind(label string) OpKind {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "append":
		return OpAppend
	case "prepend":
		return OpPrepend
	case "strip":
		return OpStrip
	case "capitalize":
		return OpCapitalize
	case "truncate_date", "trunc_date":
		return OpTruncateDate
	case "cast_int":
		return OpCastInt
	case "round":
		return OpRound
	case "normalize_null", "none":
		return OpNormalizeNull
	default:
		return OpUnknown
	}
}

// Rule is one column rewrite declared in the mapping file. Rules apply
// in file order to whichever dataset Side selects.
type Rule struct {
	Side      Side   // Dataset the rule rewrites
	Column    string // Column the rule rewrites
	Operation OpKind // Parsed operation tag
	RawOp     string // Original operation label, kept for diagnostics
	Param     string // Operation argument, meaningful only when HasParam is true
	HasParam  bool   // Whether the mapping file supplied an argument
}
