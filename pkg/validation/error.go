package validation

import "fmt"

// Error reports the first field that failed validation. Checks stop at
// the first failure, so Field is always a single offending field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%q %s", e.Field, e.Message)
}

// Fail builds an *Error for field with a formatted message.
func Fail(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}
