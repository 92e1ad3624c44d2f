// pkg/acquire/sql.go
package acquire

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tablerecon/tablerecon/pkg/model"
)

// LoadQuery runs one extract statement and materializes the result set
// as a dataset. Every cell is stringified on the way in; typing is the
// rule pipeline's business, not the loader's.
func LoadQuery(ctx context.Context, db *sqlx.DB, query string) (*model.Dataset, error) {
	rows, err := db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}

	ds := model.NewDataset(columns)
	for rows.Next() {
		raw := make(map[string]interface{}, len(columns))
		if err := rows.MapScan(raw); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		row := make(model.Row, len(columns))
		for _, column := range columns {
			row[column] = cellValue(raw[column])
		}
		ds.AppendRow(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate result rows: %w", err)
	}

	return ds, nil
}

// cellValue stringifies one driver value
func cellValue(v interface{}) model.Value {
	if v == nil {
		return model.Null()
	}

	switch val := v.(type) {
	case string:
		return model.NewValue(val)
	case []byte:
		return model.NewValue(string(val))
	case time.Time:
		return model.NewValue(val.Format("2006-01-02 15:04:05"))
	case bool:
		return model.NewValue(strconv.FormatBool(val))
	case int64:
		return model.NewValue(strconv.FormatInt(val, 10))
	case float64:
		return model.NewValue(strconv.FormatFloat(val, 'f', -1, 64))
	default:
		return model.NewValue(fmt.Sprintf("%v", val))
	}
}
