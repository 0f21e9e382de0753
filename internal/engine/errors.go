package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/hqd/internal/catalog"
)

// Error codes for engine failures. Codes are stable identifiers surfaced in
// CLI output; messages carry the offending handler and constraint ids.
const (
	ErrCodeUnknownHandler          = "E101"
	ErrCodeMissingDependency       = "E102"
	ErrCodeConflictingAlternative  = "E103"
	ErrCodeUnsupportedAppType      = "E104"
	ErrCodeContradictoryConstraint = "E111"
	ErrCodeUnresolvedExplicitOrder = "E112"
	ErrCodeCyclicConstraint        = "E113"
	ErrCodeMalformedQueue          = "E121"
)

// MissingDependencyError reports an enabled feature whose handler depends on
// another feature that is not enabled.
type MissingDependencyError struct {
	Feature  string // the enabled feature (e.g. "database.transaction")
	Requires string // the missing prerequisite (e.g. "database.enabled")
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("missing dependency: %s requires %s", e.Feature, e.Requires)
}

// ConflictingAlternativeError reports two mutually exclusive handlers that
// would both be selected.
type ConflictingAlternativeError struct {
	HandlerA string
	HandlerB string
}

func (e *ConflictingAlternativeError) Error() string {
	return fmt.Sprintf("conflicting alternatives: handlers %q and %q are mutually exclusive", e.HandlerA, e.HandlerB)
}

// ContradictoryConstraintError reports two applicable constraints demanding
// opposite order for the same handler pair, or two handlers both declaring
// the last position.
type ContradictoryConstraintError struct {
	ConstraintA string
	ConstraintB string
	HandlerA    string
	HandlerB    string
}

func (e *ContradictoryConstraintError) Error() string {
	return fmt.Sprintf("contradictory constraints: %s and %s demand opposite order for handlers %q and %q",
		e.ConstraintA, e.ConstraintB, e.HandlerA, e.HandlerB)
}

// UnresolvedExplicitOrderError reports a requires_explicit_order group with
// members lacking an ordering hint (C-10).
type UnresolvedExplicitOrderError struct {
	ConstraintID string
	Handlers     []string // group members without hints, sorted
}

func (e *UnresolvedExplicitOrderError) Error() string {
	return fmt.Sprintf("unresolved explicit order: rule %s requires an order hint for handlers [%s]",
		e.ConstraintID, strings.Join(e.Handlers, ", "))
}

// CyclicConstraintError reports that no valid total order exists. Cycle
// lists the minimal cycle's handler ids, closed (first element repeated
// last).
type CyclicConstraintError struct {
	Cycle []string
}

func (e *CyclicConstraintError) Error() string {
	return fmt.Sprintf("cyclic constraints: no valid order exists, cycle: %s", strings.Join(e.Cycle, " -> "))
}

// MalformedQueueError reports structurally invalid validator input, distinct
// from rule violations.
type MalformedQueueError struct {
	Reason    string // "empty queue" or "duplicate handler"
	HandlerID string // offending id for duplicates
}

func (e *MalformedQueueError) Error() string {
	if e.HandlerID != "" {
		return fmt.Sprintf("malformed queue: %s %q", e.Reason, e.HandlerID)
	}
	return fmt.Sprintf("malformed queue: %s", e.Reason)
}

// ErrorCode maps an engine or catalog error to its stable code. Unknown
// errors map to the empty string.
func ErrorCode(err error) string {
	var (
		unknownHandler *catalog.UnknownHandlerError
		unsupportedApp *catalog.UnsupportedAppTypeError
		missingDep     *MissingDependencyError
		conflicting    *ConflictingAlternativeError
		contradictory  *ContradictoryConstraintError
		unresolved     *UnresolvedExplicitOrderError
		cyclic         *CyclicConstraintError
		malformed      *MalformedQueueError
	)
	switch {
	case errors.As(err, &unknownHandler):
		return ErrCodeUnknownHandler
	case errors.As(err, &unsupportedApp):
		return ErrCodeUnsupportedAppType
	case errors.As(err, &missingDep):
		return ErrCodeMissingDependency
	case errors.As(err, &conflicting):
		return ErrCodeConflictingAlternative
	case errors.As(err, &contradictory):
		return ErrCodeContradictoryConstraint
	case errors.As(err, &unresolved):
		return ErrCodeUnresolvedExplicitOrder
	case errors.As(err, &cyclic):
		return ErrCodeCyclicConstraint
	case errors.As(err, &malformed):
		return ErrCodeMalformedQueue
	default:
		return ""
	}
}
