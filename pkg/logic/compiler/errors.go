package compiler

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes a compile-time rule error.
type ErrorKind string

const (
	// KindUnknownOperand means a condition references a field that does not
	// exist in the survey version.
	KindUnknownOperand ErrorKind = "unknown_operand"

	// KindTypeMismatch means an operator is not valid for the operand
	// field's declared type, or a literal has the wrong shape for the
	// operator.
	KindTypeMismatch ErrorKind = "type_mismatch"

	// KindForwardReference means a condition references a field declared at
	// or after the rule's owner in evaluation order.
	KindForwardReference ErrorKind = "forward_reference"
)

// Error is a single compile-time rule error.
type Error struct {
	Kind    ErrorKind
	Owner   string // ID of the section or field that owns the rule
	Operand string // referenced field ID, if any
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Operand != "" {
		return fmt.Sprintf("[%s] rule on %q, operand %q: %s", e.Kind, e.Owner, e.Operand, e.Message)
	}
	return fmt.Sprintf("[%s] rule on %q: %s", e.Kind, e.Owner, e.Message)
}

// ErrorList accumulates compile errors so a single pass reports every
// problem in a survey version.
type ErrorList struct {
	Errors []*Error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	el.Errors = append(el.Errors, err)
}

// AddError creates and appends a new error.
func (el *ErrorList) AddError(kind ErrorKind, owner, operand, format string, args ...any) {
	el.Add(&Error{
		Kind:    kind,
		Owner:   owner,
		Operand: operand,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool {
	return len(el.Errors) > 0
}

// Count returns the number of errors in the list.
func (el *ErrorList) Count() int {
	return len(el.Errors)
}

// HasKind returns true if the list contains at least one error of the
// given kind.
func (el *ErrorList) HasKind(kind ErrorKind) bool {
	for _, err := range el.Errors {
		if err.Kind == kind {
			return true
		}
	}
	return false
}

// Error implements the error interface, formatting all errors together.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "found %d rule error(s):\n", el.Count())
	for _, err := range el.Errors {
		sb.WriteString("  ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToError returns nil if the list is empty, otherwise the list itself.
func (el *ErrorList) ToError() error {
	if !el.HasErrors() {
		return nil
	}
	return el
}
