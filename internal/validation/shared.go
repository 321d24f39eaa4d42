package validation

import (
	"fmt"
	"strings"
)

// Error carries field-level validation failures. The map key is the offending
// field name, the value a human-readable message surfaced inline by clients.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}
