package catalog

// Kind is the closed set of ordering rule kinds. Constraint evaluation
// dispatches on Kind with an explicit switch so the rule set stays auditable;
// adding a kind is a deliberate code change, never dynamic dispatch.
type Kind string

const (
	// KindPrecedes requires handler A to appear before handler B.
	KindPrecedes Kind = "precedes"
	// KindSucceeds requires handler A to appear after handler B.
	KindSucceeds Kind = "succeeds"
	// KindFirst requires the target handler to open the queue.
	KindFirst Kind = "first"
	// KindLast requires the target category's handler to close the queue.
	KindLast Kind = "last"
	// KindNearTop requires the target handler's index to stay at or below
	// Threshold.
	KindNearTop Kind = "near_top"
	// KindContains requires every selected handler flagged Nested to be
	// declared inside the container handler, not at top level.
	KindContains Kind = "contains"
	// KindRequiresExplicitOrder requires user-supplied ordering hints for
	// every selected handler in the target category.
	KindRequiresExplicitOrder Kind = "requires_explicit_order"
)

// Severity classifies rule violations.
type Severity string

const (
	// SeverityCritical blocks generation and is always reported by validation.
	SeverityCritical Severity = "critical"
	// SeverityWarning is reported but never blocks.
	SeverityWarning Severity = "warning"
)

// Constraint is one published ordering rule. The field set is a union over
// kinds; per-kind usage:
//
//	precedes:  A before B
//	succeeds:  A after B
//	first:     A opens the queue
//	last:      the selected handler of TargetCategory closes the queue
//	near_top:  A's index must be <= Threshold
//	contains:  handlers flagged Nested live inside Container
//	requires_explicit_order: TargetCategory members need ordering hints
type Constraint struct {
	// ID matches the published rule id (C-01 .. C-11).
	ID string `json:"id"`

	// Rule is the published rule text, quoted verbatim in every violation
	// message so callers can act without consulting the engine.
	Rule string `json:"rule"`

	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`

	// Scope restricts the rule to a subset of application types. Empty means
	// global.
	Scope []AppType `json:"scope,omitempty"`

	A string `json:"a,omitempty"`
	B string `json:"b,omitempty"`

	TargetCategory Category `json:"target_category,omitempty"`
	Container      string   `json:"container,omitempty"`
	Threshold      int      `json:"threshold,omitempty"`
}

// AppliesTo reports whether the constraint is in scope for the given
// application type.
func (c Constraint) AppliesTo(t AppType) bool {
	if len(c.Scope) == 0 {
		return true
	}
	for _, a := range c.Scope {
		if a == t {
			return true
		}
	}
	return false
}

// ConstraintSet is the read-only ordering rule lookup table.
type ConstraintSet struct {
	ordered []Constraint
	byID    map[string]Constraint
}

// NewConstraintSet builds a constraint set from rule definitions. Used by
// tests to construct artificial rule sets; production code uses Rules().
func NewConstraintSet(constraints []Constraint) *ConstraintSet {
	s := &ConstraintSet{
		ordered: make([]Constraint, len(constraints)),
		byID:    make(map[string]Constraint, len(constraints)),
	}
	copy(s.ordered, constraints)
	for _, c := range constraints {
		s.byID[c.ID] = c
	}
	return s
}

// ApplicableTo returns the constraints in scope for the given application
// type, in published rule order.
func (s *ConstraintSet) ApplicableTo(t AppType) []Constraint {
	var out []Constraint
	for _, c := range s.ordered {
		if c.AppliesTo(t) {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the constraint with the given rule id.
func (s *ConstraintSet) Lookup(id string) (Constraint, bool) {
	c, ok := s.byID[id]
	return c, ok
}

// All returns every constraint in published rule order.
func (s *ConstraintSet) All() []Constraint {
	out := make([]Constraint, len(s.ordered))
	copy(out, s.ordered)
	return out
}
