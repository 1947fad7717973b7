package costs

import (
	"bytes"
	"encoding/json"
	"fmt"

	"cloudey/internal/table"
)

// DetailTable builds a generic resource table from a recommendation's
// drill-down records. Columns come from the first record's keys in their
// payload order; identifier columns are hidden on screen but kept for
// export. Empty or absent details yield no table.
func DetailTable(details json.RawMessage) (*table.Model, bool, error) {
	if len(details) == 0 {
		return nil, false, nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(details, &elements); err != nil {
		return nil, false, fmt.Errorf("failed to parse detail records: %w", err)
	}
	if len(elements) == 0 {
		return nil, false, nil
	}

	keys, err := objectKeys(elements[0])
	if err != nil {
		return nil, false, err
	}

	cols := make([]table.Column, 0, len(keys))
	for _, key := range keys {
		col := table.ColumnFor(key)
		col.Hidden = hiddenKey(key)
		cols = append(cols, col)
	}

	rows := make([]table.Row, 0, len(elements))
	for i, raw := range elements {
		var cells map[string]interface{}
		if err := json.Unmarshal(raw, &cells); err != nil {
			return nil, false, fmt.Errorf("failed to parse detail record %d: %w", i, err)
		}
		rows = append(rows, table.Row{ID: rowID(cells, i), Cells: cells})
	}

	return table.New(cols, rows), true, nil
}

// objectKeys walks a JSON object's tokens to recover its keys in payload
// order, which plain map unmarshalling loses.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read detail record: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("detail record is not an object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read detail record: %w", err)
		}
		keys = append(keys, tok.(string))

		// Skip the value, descending through nested containers.
		depth := 0
		for {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("failed to read detail record: %w", err)
			}
			if delim, ok := tok.(json.Delim); ok {
				switch delim {
				case '{', '[':
					depth++
				case '}', ']':
					depth--
				}
			}
			if depth == 0 {
				break
			}
		}
	}
	return keys, nil
}

func rowID(cells map[string]interface{}, index int) string {
	for _, key := range []string{"id", "resource_id", "ocid"} {
		if v, ok := cells[key].(string); ok && v != "" {
			return v
		}
	}
	return fmt.Sprintf("row-%d", index)
}
