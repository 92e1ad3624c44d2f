// pkg/mapping/mapping.go
package mapping

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/tablerecon/tablerecon/pkg/model"
)

// entry is the wire format of one mapping-file value
type entry struct {
	Columns map[string]string `json:"Columns"`
	Rules   []ruleSpec        `json:"Rules"`
	PK      []string          `json:"PK"`
}

// ruleSpec is the wire format of one rule. Value is a pointer so a rule
// that carries no argument stays distinguishable from one whose argument
// is the empty string.
type ruleSpec struct {
	Side      string  `json:"Side"`
	Column    string  `json:"Column"`
	Operation string  `json:"Operation"`
	Value     *string `json:"Value"`
}

// Mapping holds the mapping file's entries in file order. Order matters:
// a table name matched by several keys takes the last one in the file,
// and that choice must be reproducible run over run.
type Mapping struct {
	keys    []string
	entries map[string]entry
	logger  *zap.Logger
}

// Load reads the mapping file. A missing or malformed file never fails
// the run: Load returns an empty mapping alongside the error so callers
// can surface the degradation and keep going.
func Load(path string, logger *zap.Logger) (*Mapping, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Mapping{entries: make(map[string]entry), logger: logger}

	f, err := os.Open(path)
	if err != nil {
		logger.Warn("Mapping file could not be opened, continuing without table configuration",
			zap.String("path", path),
			zap.Error(err))
		return m, fmt.Errorf("failed to open mapping file: %w", err)
	}
	defer f.Close()

	if err := m.parse(f); err != nil {
		logger.Warn("Mapping file could not be parsed, continuing without table configuration",
			zap.String("path", path),
			zap.Error(err))
		return &Mapping{entries: make(map[string]entry), logger: logger},
			fmt.Errorf("failed to parse mapping file: %w", err)
	}

	logger.Info("Loaded table configuration mapping",
		zap.String("path", path),
		zap.Int("entries", len(m.keys)))
	return m, nil
}

// parse walks the top-level JSON object token by token so the key order
// of the file is preserved. A plain map decode would lose it.
func (m *Mapping) parse(r io.Reader) error {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read mapping document: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("mapping document must be a JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to read mapping key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("mapping key must be a string, got %v", keyTok)
		}

		var e entry
		if err := dec.Decode(&e); err != nil {
			return fmt.Errorf("failed to decode mapping entry %q: %w", key, err)
		}

		// A repeated key keeps its last definition and moves to the
		// back of the order, so "last in the file wins" holds for it too.
		if _, seen := m.entries[key]; seen {
			for i, existing := range m.keys {
				if existing == key {
					m.keys = append(m.keys[:i], m.keys[i+1:]...)
					break
				}
			}
		}
		m.keys = append(m.keys, key)
		m.entries[key] = e
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("failed to read end of mapping document: %w", err)
	}
	return nil
}

// Empty reports whether the mapping carries no entries.
func (m *Mapping) Empty() bool {
	return len(m.keys) == 0
}

// Keys returns the mapping keys in file order.
func (m *Mapping) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Resolve returns the configuration for a table, selected by substring
// match: every mapping key that is a substring of the table name is a
// candidate, and the last candidate in file order wins. The full
// candidate list comes back with the config so callers can flag
// ambiguity or absence. An unmatched table gets an empty config.
func (m *Mapping) Resolve(tableName string) (model.TableConfig, []string) {
	var matched []string
	for _, key := range m.keys {
		if strings.Contains(tableName, key) {
			matched = append(matched, key)
		}
	}

	if len(matched) == 0 {
		return model.TableConfig{}, nil
	}

	winner := matched[len(matched)-1]
	if len(matched) > 1 {
		m.logger.Warn("Multiple mapping keys match table, using the last one",
			zap.String("table", tableName),
			zap.Strings("matched", matched),
			zap.String("selected", winner))
	}

	return m.buildConfig(m.entries[winner]), matched
}

// buildConfig converts a wire entry into the engine's table config
func (m *Mapping) buildConfig(e entry) model.TableConfig {
	cfg := model.TableConfig{
		PrimaryKey: append([]string(nil), e.PK...),
	}

	if len(e.Columns) > 0 {
		cfg.ColumnRenames = make(map[string]string, len(e.Columns))
		for from, to := range e.Columns {
			cfg.ColumnRenames[from] = to
		}
	}

	for _, spec := range e.Rules {
		rule := model.Rule{
			Side:      model.ParseSide(spec.Side),
			Column:    spec.Column,
			Operation: model.ParseOpKind(spec.Operation),
			RawOp:     spec.Operation,
		}
		if spec.Value != nil {
			rule.Param = *spec.Value
			rule.HasParam = true
		}
		cfg.Rules = append(cfg.Rules, rule)
	}

	return cfg
}
