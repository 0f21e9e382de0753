package engine

import (
	"fmt"
	"sort"

	"github.com/roach88/hqd/internal/catalog"
)

// QueueItem is one handler occurrence in an externally supplied queue.
// Unknown handlers keep their raw identifier with Known false.
type QueueItem struct {
	ID     string
	Known  bool
	Nested []QueueItem
}

// QueueDocument is an externally supplied queue to validate, as recovered
// from an existing configuration file.
type QueueDocument struct {
	AppType catalog.AppType
	Entries []QueueItem

	// Hints carries explicit order hints when the caller has them (e.g. a
	// generation round trip). A bare configuration file has none.
	Hints map[string]int
}

// Violation is one rule violation found by validation.
type Violation struct {
	ConstraintID string           `json:"constraint_id"`
	Severity     catalog.Severity `json:"severity"`
	Handlers     []string         `json:"handlers"`
	Message      string           `json:"message"`
}

// Report is the complete validation result. Rule violations never abort
// validation; a single pass surfaces every problem.
type Report struct {
	AppType catalog.AppType `json:"app_type"`
	Queue   []string        `json:"queue"`

	Violations []Violation `json:"violations,omitempty"`

	// Satisfied lists the applicable constraint ids that were checked and
	// passed.
	Satisfied []string `json:"satisfied,omitempty"`

	// UnknownHandlers lists queue identifiers outside the catalog, reported
	// separately as warnings rather than failing validation.
	UnknownHandlers []string `json:"unknown_handlers,omitempty"`
}

// HasCritical reports whether any critical violation was found.
func (r *Report) HasCritical() bool {
	for _, v := range r.Violations {
		if v.Severity == catalog.SeverityCritical {
			return true
		}
	}
	return false
}

// CriticalCount returns the number of critical violations.
func (r *Report) CriticalCount() int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == catalog.SeverityCritical {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity violations.
func (r *Report) WarningCount() int {
	return len(r.Violations) - r.CriticalCount()
}

// Validator checks externally supplied queues against the rule catalog.
type Validator struct {
	cat     *catalog.Catalog
	builder *Builder
}

// NewValidator creates a validator over the given knowledge bases.
func NewValidator(cat *catalog.Catalog, rules *catalog.ConstraintSet) *Validator {
	return &Validator{cat: cat, builder: NewBuilder(rules)}
}

// ValidateQueue checks a queue produced by the generation pipeline, reusing
// its selection hints. Used for round-trip verification.
func (v *Validator) ValidateQueue(q *OrderedQueue, hints map[string]int) (*Report, error) {
	doc := &QueueDocument{AppType: q.AppType, Hints: hints}
	for _, e := range q.Entries {
		item := QueueItem{ID: e.Handler.ID, Known: true}
		for _, n := range e.Nested {
			item.Nested = append(item.Nested, QueueItem{ID: n.ID, Known: true})
		}
		doc.Entries = append(doc.Entries, item)
	}
	return v.Validate(doc)
}

// Validate rebuilds the constraint graph restricted to the handlers actually
// present in the document and checks every applicable rule, accumulating all
// violations into one report. It fails only on structurally malformed input:
// an empty queue or a duplicate handler id.
func (v *Validator) Validate(doc *QueueDocument) (*Report, error) {
	if len(doc.Entries) == 0 {
		return nil, &MalformedQueueError{Reason: "empty queue"}
	}
	if !doc.AppType.Valid() {
		return nil, &catalog.UnsupportedAppTypeError{Type: string(doc.AppType)}
	}

	report := &Report{AppType: doc.AppType}

	// Flatten, resolving against the catalog. Positions include unknown
	// handlers; an unknown entry still occupies an index.
	var (
		selection   []SelectedHandler
		topIndex    = make(map[string]int)
		nestedUnder = make(map[string]string)
		seen        = make(map[string]bool)
	)
	for i, item := range doc.Entries {
		if seen[item.ID] {
			return nil, &MalformedQueueError{Reason: "duplicate handler", HandlerID: item.ID}
		}
		seen[item.ID] = true
		report.Queue = append(report.Queue, item.ID)

		if h, err := v.cat.Lookup(item.ID); err == nil {
			selection = append(selection, SelectedHandler{Handler: h})
			topIndex[item.ID] = i
		} else {
			report.UnknownHandlers = append(report.UnknownHandlers, item.ID)
			topIndex[item.ID] = i
		}

		for _, n := range item.Nested {
			if seen[n.ID] {
				return nil, &MalformedQueueError{Reason: "duplicate handler", HandlerID: n.ID}
			}
			seen[n.ID] = true
			nestedUnder[n.ID] = item.ID
			if h, err := v.cat.Lookup(n.ID); err == nil {
				selection = append(selection, SelectedHandler{Handler: h})
			} else {
				report.UnknownHandlers = append(report.UnknownHandlers, n.ID)
			}
		}
	}

	sort.Slice(selection, func(i, j int) bool { return selection[i].ID < selection[j].ID })
	sel := &HandlerSelection{AppType: doc.AppType, Handlers: selection, Hints: doc.Hints}

	g, err := v.builder.BuildLenient(sel)
	if err != nil {
		return nil, err
	}

	checked := make(map[string]bool)
	violated := make(map[string]bool)
	record := func(cid string, severity catalog.Severity, handlers []string, msg string) {
		violated[cid] = true
		report.Violations = append(report.Violations, Violation{
			ConstraintID: cid,
			Severity:     severity,
			Handlers:     handlers,
			Message:      msg,
		})
	}

	v.checkEdges(g, topIndex, checked, record)
	v.checkPins(g, topIndex, len(doc.Entries), checked, record)
	v.checkContainment(g, topIndex, nestedUnder, checked, record)
	v.checkGroups(g, checked, record)

	for cid := range checked {
		if !violated[cid] {
			report.Satisfied = append(report.Satisfied, cid)
		}
	}
	sort.Strings(report.Satisfied)
	sort.Slice(report.Violations, func(i, j int) bool {
		a, b := report.Violations[i], report.Violations[j]
		if a.ConstraintID != b.ConstraintID {
			return a.ConstraintID < b.ConstraintID
		}
		return fmt.Sprint(a.Handlers) < fmt.Sprint(b.Handlers)
	})
	return report, nil
}

func (v *Validator) checkEdges(g *Graph, topIndex map[string]int, checked map[string]bool, record recordFunc) {
	for _, e := range g.Edges {
		from, okFrom := topIndex[e.From]
		to, okTo := topIndex[e.To]
		if !okFrom || !okTo {
			continue
		}
		checked[e.ConstraintID] = true
		if from >= to {
			record(e.ConstraintID, e.Severity, []string{e.From, e.To},
				fmt.Sprintf("%s: found %q at index %d and %q at index %d",
					e.Rule, e.From, from, e.To, to))
		}
	}
}

func (v *Validator) checkPins(g *Graph, topIndex map[string]int, queueLen int, checked map[string]bool, record recordFunc) {
	for id, cid := range g.First {
		idx, ok := topIndex[id]
		if !ok {
			continue
		}
		checked[cid] = true
		if idx != 0 {
			c, _ := v.builder.rules.Lookup(cid)
			record(cid, c.Severity, []string{id},
				fmt.Sprintf("%s: found %q at index %d", c.Rule, id, idx))
		}
	}
	for id, cid := range g.Last {
		idx, ok := topIndex[id]
		if !ok {
			continue
		}
		checked[cid] = true
		if idx != queueLen-1 {
			c, _ := v.builder.rules.Lookup(cid)
			record(cid, c.Severity, []string{id},
				fmt.Sprintf("%s: found %q at index %d of %d", c.Rule, id, idx, queueLen))
		}
	}
	for id, spec := range g.NearTop {
		idx, ok := topIndex[id]
		if !ok {
			continue
		}
		checked[spec.ConstraintID] = true
		if idx > spec.Threshold {
			c, _ := v.builder.rules.Lookup(spec.ConstraintID)
			record(spec.ConstraintID, c.Severity, []string{id},
				fmt.Sprintf("%s: found %q at index %d, threshold %d", c.Rule, id, idx, spec.Threshold))
		}
	}
}

func (v *Validator) checkContainment(g *Graph, topIndex map[string]int, nestedUnder map[string]string, checked map[string]bool, record recordFunc) {
	for _, spec := range g.Contains {
		checked[spec.ConstraintID] = true
		c, _ := v.builder.rules.Lookup(spec.ConstraintID)
		for _, member := range spec.Members {
			if _, atTop := topIndex[member]; atTop {
				record(spec.ConstraintID, c.Severity, []string{member, spec.Container},
					fmt.Sprintf("%s: %q appears at top level instead of inside %q",
						c.Rule, member, spec.Container))
				continue
			}
			if container, ok := nestedUnder[member]; ok && container != spec.Container {
				record(spec.ConstraintID, c.Severity, []string{member, container},
					fmt.Sprintf("%s: %q is nested inside %q instead of %q",
						c.Rule, member, container, spec.Container))
			}
		}
	}
}

// checkGroups flags explicit-order groups whose hints are incomplete: their
// relative order cannot be verified from a bare queue. Groups with complete
// hints contribute chain edges at build time and are covered by checkEdges.
func (v *Validator) checkGroups(g *Graph, checked map[string]bool, record recordFunc) {
	for _, grp := range g.Groups {
		checked[grp.ConstraintID] = true
		if len(grp.Hints) == len(grp.Members) {
			continue
		}
		c, _ := v.builder.rules.Lookup(grp.ConstraintID)
		record(grp.ConstraintID, catalog.SeverityWarning, grp.Members,
			fmt.Sprintf("%s: no explicit order recorded for [%s]; relative order is unverifiable",
				c.Rule, joinIDs(grp.Members)))
	}
}

type recordFunc func(cid string, severity catalog.Severity, handlers []string, msg string)

func joinIDs(ids []string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ", "
		}
		out += id
	}
	return out
}
