package validation

import (
	"sort"
	"strings"
)

// Error collects the request fields that failed validation, keyed by field
// name such as "startDate" or "portfolios[1].assets[0].allocation".
type Error struct {
	Fields map[string]string
}

// Error lists the failures sorted by field name so the 400 details are stable.
func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		names = append(names, field)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, field := range names {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(field)
		b.WriteString(": ")
		b.WriteString(e.Fields[field])
	}
	return b.String()
}
