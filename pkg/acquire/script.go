// pkg/acquire/script.go
package acquire

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ScriptQuery is one extract statement from the query script: the SQL to
// run plus the source directory and table name its results land under.
type ScriptQuery struct {
	SourceID string
	Table    string
	SQL      string
}

// ParseScript reads extract statements from a query script. Each
// statement is announced by a comment line of the form
//
//	--SOURCE|TABLE
//
// and runs until the first line containing a ";" terminator. Text before
// the first announcement line is ignored.
func ParseScript(path string) ([]ScriptQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open query script: %w", err)
	}
	defer f.Close()

	queries, err := parseScript(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query script %s: %w", path, err)
	}
	return queries, nil
}

func parseScript(r io.Reader) ([]ScriptQuery, error) {
	var (
		queries []ScriptQuery
		key     string
		body    strings.Builder
		lineNo  int
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		if strings.HasPrefix(line, "--") {
			if key != "" && body.Len() > 0 {
				return nil, fmt.Errorf("line %d: new key line before %q terminated", lineNo, key)
			}
			key = strings.TrimSpace(line[2:])
			continue
		}

		if key == "" || strings.TrimSpace(line) == "" {
			continue
		}

		body.WriteString(line)
		body.WriteString("\n")

		if strings.Contains(line, ";") {
			sourceID, table, ok := strings.Cut(key, "|")
			if !ok {
				return nil, fmt.Errorf("line %d: key %q is not of the form SOURCE|TABLE", lineNo, key)
			}
			queries = append(queries, ScriptQuery{
				SourceID: strings.TrimSpace(sourceID),
				Table:    strings.TrimSpace(table),
				SQL:      strings.TrimSuffix(strings.TrimSpace(body.String()), ";"),
			})
			key = ""
			body.Reset()
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}

	if key != "" && body.Len() > 0 {
		return nil, fmt.Errorf("statement for key %q is missing its \";\" terminator", key)
	}

	return queries, nil
}
