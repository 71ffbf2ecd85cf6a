package leads

import "strings"

// ValidationError reports every missing or blank required field, not just the
// first one.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "Campos requeridos faltantes: " + strings.Join(e.Missing, ", ")
}
