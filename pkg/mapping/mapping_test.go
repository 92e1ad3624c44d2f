// pkg/mapping/mapping_test.go
package mapping

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/model"
)

func writeMappingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "column_mappings.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndResolve(t *testing.T) {
	path := writeMappingFile(t, `{
		"PAYMENT": {
			"Columns": {"ACCT_REF": "ACCOUNT_ID"},
			"Rules": [
				{"Side": "source", "Column": "AMOUNT", "Operation": "round", "Value": "2"},
				{"Side": "snow", "Column": "STATUS", "Operation": "capitalize"}
			],
			"PK": ["PAYMENT_ID"]
		}
	}`)

	m, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	require.False(t, m.Empty())

	cfg, matched := m.Resolve("DAILY_PAYMENT_FEED")
	assert.Equal(t, []string{"PAYMENT"}, matched)
	assert.Equal(t, []string{"PAYMENT_ID"}, cfg.PrimaryKey)
	assert.Equal(t, map[string]string{"ACCT_REF": "ACCOUNT_ID"}, cfg.ColumnRenames)

	require.Len(t, cfg.Rules, 2)
	assert.Equal(t, model.SideSource, cfg.Rules[0].Side)
	assert.Equal(t, model.OpRound, cfg.Rules[0].Operation)
	assert.Equal(t, "2", cfg.Rules[0].Param)
	assert.True(t, cfg.Rules[0].HasParam)
	assert.Equal(t, model.SideReference, cfg.Rules[1].Side)
	assert.Equal(t, model.OpCapitalize, cfg.Rules[1].Operation)
	assert.False(t, cfg.Rules[1].HasParam)
}

func TestResolveLastMatchWins(t *testing.T) {
	path := writeMappingFile(t, `{
		"ACCOUNT": {"PK": ["A"]},
		"ACCOUNT_HISTORY": {"PK": ["B"]}
	}`)

	m, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	cfg, matched := m.Resolve("ACCOUNT_HISTORY_2024")
	assert.Equal(t, []string{"ACCOUNT", "ACCOUNT_HISTORY"}, matched)
	assert.Equal(t, []string{"B"}, cfg.PrimaryKey)
}

func TestResolveUnmatchedTable(t *testing.T) {
	path := writeMappingFile(t, `{"PAYMENT": {"PK": ["ID"]}}`)

	m, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	cfg, matched := m.Resolve("INVENTORY")
	assert.Empty(t, matched)
	assert.True(t, cfg.Empty())
	assert.False(t, cfg.HasPrimaryKey())
}

func TestResolveDuplicateKeyKeepsLastDefinition(t *testing.T) {
	path := writeMappingFile(t, `{
		"PAYMENT": {"PK": ["OLD"]},
		"PAYMENT": {"PK": ["NEW"]}
	}`)

	m, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"PAYMENT"}, m.Keys())

	cfg, _ := m.Resolve("PAYMENT_FEED")
	assert.Equal(t, []string{"NEW"}, cfg.PrimaryKey)
}

func TestLoadMissingFileDegrades(t *testing.T) {
	m, err := Load(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	require.Error(t, err)
	require.NotNil(t, m)
	assert.True(t, m.Empty())

	cfg, matched := m.Resolve("ANY_TABLE")
	assert.Empty(t, matched)
	assert.True(t, cfg.Empty())
}

func TestLoadMalformedFileDegrades(t *testing.T) {
	path := writeMappingFile(t, `["not", "an", "object"]`)

	m, err := Load(path, zap.NewNop())
	require.Error(t, err)
	require.NotNil(t, m)
	assert.True(t, m.Empty())
}

func TestRuleValuePresenceSurvivesEmptyString(t *testing.T) {
	path := writeMappingFile(t, `{
		"T": {
			"Rules": [
				{"Side": "source", "Column": "A", "Operation": "append", "Value": ""},
				{"Side": "source", "Column": "B", "Operation": "normalize_null"}
			]
		}
	}`)

	m, err := Load(path, zap.NewNop())
	require.NoError(t, err)

	cfg, _ := m.Resolve("T_FEED")
	require.Len(t, cfg.Rules, 2)
	assert.True(t, cfg.Rules[0].HasParam)
	assert.Equal(t, "", cfg.Rules[0].Param)
	assert.False(t, cfg.Rules[1].HasParam)
}
