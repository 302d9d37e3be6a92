package entgraph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates a type or field definition error.
	ErrInvalidSchema = errors.New("entgraph: invalid schema")
	// ErrInvalidRelation indicates a relationship definition error.
	ErrInvalidRelation = errors.New("entgraph: invalid relationship")
	// ErrFinalized is returned when a builder is used after Finalize.
	ErrFinalized = errors.New("entgraph: schema already finalized")
	// ErrUsage indicates a record-level misuse of the store.
	ErrUsage = errors.New("entgraph: usage error")
	// ErrValidation indicates a scalar value was rejected by its type.
	ErrValidation = errors.New("entgraph: validation failed")
	// ErrConstraint indicates a unique key is already held by another record.
	ErrConstraint = errors.New("entgraph: constraint failed")
)

// SchemaError represents a type or field definition error.
type SchemaError struct {
	Type    string // Type name
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("entgraph: schema error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(typeName, fieldName, message string, cause error) *SchemaError {
	return &SchemaError{
		Type:    typeName,
		Field:   fieldName,
		Message: message,
		Cause:   cause,
	}
}

// RelationError represents a relationship declaration error.
type RelationError struct {
	From    string
	To      string
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RelationError) Error() string {
	var b strings.Builder
	b.WriteString("entgraph: relationship error")
	if e.Field != "" {
		b.WriteString(" on field ")
		b.WriteString(e.Field)
	}
	if e.From != "" && e.To != "" {
		fmt.Fprintf(&b, " (%s -> %s)", e.From, e.To)
	} else if e.From != "" {
		b.WriteString(" from ")
		b.WriteString(e.From)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *RelationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for RelationError.
func (e *RelationError) Is(target error) bool {
	return target == ErrInvalidRelation
}

// NewRelationError creates a new RelationError.
func NewRelationError(from, to, field, message string, cause error) *RelationError {
	return &RelationError{
		From:    from,
		To:      to,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// UsageError represents a recoverable misuse of the store, such as a
// literal without a lid or a field the record's type does not define.
type UsageError struct {
	Op      string // Store operation (put, get, lookup, remove, destroy)
	Message string
}

// Error implements the error interface.
func (e *UsageError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("entgraph: %s: %s", e.Op, e.Message)
	}
	return "entgraph: " + e.Message
}

// Is reports whether the target matches the sentinel error for UsageError.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// NewUsageError returns a new UsageError with a formatted message.
func NewUsageError(op, format string, args ...any) *UsageError {
	return &UsageError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// ValidationError represents a scalar value rejected by its type.
type ValidationError struct {
	Name string // Field name
	Err  error  // Underlying validation error
}

// Error returns the error string.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("entgraph: error validating %s: %s", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the sentinel error for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError returns a new ValidationError for the given field.
func NewValidationError(name string, err error) *ValidationError {
	return &ValidationError{Name: name, Err: err}
}

// ConstraintError represents a unique key collision.
type ConstraintError struct {
	Field string // Indexed field
	Value any    // Colliding value
	Owner string // lid of the record holding the value
}

// Error returns the error string.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("entgraph: constraint failed: %s %v already held by %q", e.Field, e.Value, e.Owner)
}

// Is reports whether the target matches the sentinel error for ConstraintError.
func (e *ConstraintError) Is(target error) bool {
	return target == ErrConstraint
}

// NewConstraintError returns a new ConstraintError.
func NewConstraintError(field string, value any, owner string) *ConstraintError {
	return &ConstraintError{Field: field, Value: value, Owner: owner}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsRelationError reports whether the error is a RelationError.
func IsRelationError(err error) bool {
	var relErr *RelationError
	return errors.As(err, &relErr)
}

// IsUsageError reports whether the error is a UsageError.
func IsUsageError(err error) bool {
	var usageErr *UsageError
	return errors.As(err, &usageErr)
}

// IsValidationError reports whether the error is a ValidationError.
func IsValidationError(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}

// IsConstraintError reports whether the error is a ConstraintError.
func IsConstraintError(err error) bool {
	var conErr *ConstraintError
	return errors.As(err, &conErr)
}
