// pkg/model/value.go
package model

// Value is a single nullable cell. Every cell stays text until a rule says
// otherwise; null is an explicit marker, never the literal string "null".
type Value struct {
	Str   string // Cell text, meaningful only when Valid is true
	Valid bool   // Whether the cell holds a value at all
}

// NewValue creates a present Value from raw cell text.
func NewValue(s string) Value {
	return Value{Str: s, Valid: true}
}

// Null returns the canonical no-value marker.
func Null() Value {
	return Value{}
}

// IsNull reports whether the cell holds no value.
func (v Value) IsNull() bool {
	return !v.Valid
}

// Equal compares two cells. Two nulls are equal; a null never equals a
// present value; present values compare by exact text.
func (v Value) Equal(other Value) bool {
	if !v.Valid && !other.Valid {
		return true
	}
	if v.Valid != other.Valid {
		return false
	}
	return v.Str == other.Str
}

// String returns the cell text, or the empty string for null.
func (v Value) String() string {
	if !v.Valid {
		return ""
	}
	return v.Str
}
