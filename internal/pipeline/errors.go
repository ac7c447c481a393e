package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyInput is returned when the uploaded file has no data rows.
var ErrEmptyInput = errors.New("input contains no data rows")

// SchemaError reports required columns absent from the input header.
// It aborts the pipeline before any cleaning or aggregation runs.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
