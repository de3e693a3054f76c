package engine

import (
	"fmt"
	"strings"
)

// FailureKind categorizes one submission validation failure.
type FailureKind string

const (
	// FailureMissingRequired means a currently visible, required field has
	// no answer.
	FailureMissingRequired FailureKind = "missing_required_field"

	// FailureValidationFailed means an answered field does not satisfy its
	// own validation rule.
	FailureValidationFailed FailureKind = "field_validation_failed"
)

// FieldFailure is a single validation failure on one field.
type FieldFailure struct {
	FieldID string
	Kind    FailureKind
	Message string
}

// String formats the failure for logs and error text.
func (f FieldFailure) String() string {
	return fmt.Sprintf("%s: [%s] %s", f.FieldID, f.Kind, f.Message)
}

// ValidationError rejects a submission. It carries every failure found,
// not just the first, so a client can surface all problems at once. The
// draft session stays active for correction.
type ValidationError struct {
	Failures []FieldFailure
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "submission rejected with %d failure(s):\n", len(e.Failures))
	for _, failure := range e.Failures {
		sb.WriteString("  ")
		sb.WriteString(failure.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// HasKind returns true if any failure has the given kind.
func (e *ValidationError) HasKind(kind FailureKind) bool {
	for _, failure := range e.Failures {
		if failure.Kind == kind {
			return true
		}
	}
	return false
}

// FieldIDs returns the IDs of all failing fields, in report order.
func (e *ValidationError) FieldIDs() []string {
	ids := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		ids = append(ids, failure.FieldID)
	}
	return ids
}
