package repo

import (
	"fmt"
	"strings"
)

// FormatLimitOffset renders a LIMIT/OFFSET clause, omitting whichever parts
// are zero.
func FormatLimitOffset(limit, offset int) string {
	var parts []string
	if limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", limit))
	}
	if offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d", offset))
	}
	return strings.Join(parts, " ")
}
