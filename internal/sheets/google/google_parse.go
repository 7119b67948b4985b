package google

import (
	"fmt"
	"strings"

	ports "fintrack/internal/sheets"
)

// rowValues lays a row out as Date, Label, Description, Amount, Kind, EntryID.
// The amount is sent as a plain decimal string so USER_ENTERED parses it as
// a number without float rounding.
func rowValues(r ports.Row) []any {
	return []any{
		r.Date.String(),
		r.Label,
		r.Description,
		r.Amount.StringFixed(2),
		string(r.Kind),
		r.EntryID,
	}
}

// parseColumn flattens the first cell of each row, dropping empty cells,
// "#" comments and repeats while preserving order.
func parseColumn(values [][]any) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(values))
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || strings.HasPrefix(v, "#") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
