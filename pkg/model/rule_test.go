// pkg/model/rule_test.go
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOpKind(t *testing.T) {
	tests := []struct {
		label string
		want  OpKind
	}{
		{label: "append", want: OpAppend},
		{label: "prepend", want: OpPrepend},
		{label: "strip", want: OpStrip},
		{label: "capitalize", want: OpCapitalize},
		{label: "truncate_date", want: OpTruncateDate},
		{label: "trunc_date", want: OpTruncateDate},
		{label: "cast_int", want: OpCastInt},
		{label: "round", want: OpRound},
		{label: "normalize_null", want: OpNormalizeNull},
		{label: "none", want: OpNormalizeNull},
		{label: "Append", want: OpAppend},
		{label: " round ", want: OpRound},
		{label: "reverse", want: OpUnknown},
		{label: "", want: OpUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOpKind(tt.label))
		})
	}
}

func TestOpKindString(t *testing.T) {
	assert.Equal(t, "truncate_date", OpTruncateDate.String())
	assert.Equal(t, "normalize_null", OpNormalizeNull.String())
	assert.Equal(t, "unknown", OpUnknown.String())
	assert.Equal(t, "unknown", OpKind(99).String())
}

func TestOpKindRequiresParam(t *testing.T) {
	needs := []OpKind{OpAppend, OpPrepend, OpStrip, OpRound}
	for _, k := range needs {
		assert.True(t, k.RequiresParam(), k.String())
	}

	standalone := []OpKind{OpCapitalize, OpTruncateDate, OpCastInt, OpNormalizeNull, OpUnknown}
	for _, k := range standalone {
		assert.False(t, k.RequiresParam(), k.String())
	}
}

func TestParseSide(t *testing.T) {
	assert.Equal(t, SideSource, ParseSide("source"))
	assert.Equal(t, SideSource, ParseSide("Source"))
	assert.Equal(t, SideReference, ParseSide("reference"))
	assert.Equal(t, SideReference, ParseSide("snow"))
	assert.Equal(t, SideReference, ParseSide("snowflake"))
	assert.Equal(t, SideReference, ParseSide("anything-else"))
}
