package row

import "fmt"

// ReadPropFailed is returned when a requested column is absent from the
// stored payload, undefaulted, and non-nullable.
type ReadPropFailed struct {
	Column string
}

func (e *ReadPropFailed) Error() string {
	return fmt.Sprintf("row: column %q absent, undefaulted, and not nullable", e.Column)
}

// NoDefaultAndNotNullable is returned by the writer when finish() is
// called without a value set for a non-nullable, undefaulted column.
type NoDefaultAndNotNullable struct {
	Column string
}

func (e *NoDefaultAndNotNullable) Error() string {
	return fmt.Sprintf("row: column %q has no default and was not set", e.Column)
}

// InvalidFieldValue is returned when a set value's runtime type cannot be
// coerced to the column's declared type.
type InvalidFieldValue struct {
	Column string
	Reason string
}

func (e *InvalidFieldValue) Error() string {
	return fmt.Sprintf("row: column %q: %s", e.Column, e.Reason)
}

// InvalidDefault is returned when a column's default expression fails to
// evaluate under the null context, or evaluates to a value of the wrong
// type.
type InvalidDefault struct {
	Column string
	Reason string
}

func (e *InvalidDefault) Error() string {
	return fmt.Sprintf("row: column %q default: %s", e.Column, e.Reason)
}
