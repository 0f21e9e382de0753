package engine

import (
	"sort"

	"github.com/roach88/hqd/internal/catalog"
)

// Edge is one directed "must precede" relation, tagged with the constraint
// that produced it.
type Edge struct {
	From         string           `json:"from"`
	To           string           `json:"to"`
	ConstraintID string           `json:"constraint_id"`
	Severity     catalog.Severity `json:"severity"`
	Rule         string           `json:"rule"`
}

// NearTopSpec records a near_top obligation on a node.
type NearTopSpec struct {
	ConstraintID string
	Threshold    int
}

// ContainsSpec records a containment obligation: Members must be nested
// inside Container, never at top level.
type ContainsSpec struct {
	ConstraintID string
	Container    string
	Members      []string
}

// OrderGroup records a requires_explicit_order group and the hints known for
// it. The validator uses it to check or flag group-internal order.
type OrderGroup struct {
	ConstraintID string
	Members      []string
	Hints        map[string]int
}

// Graph is the constraint graph over a selection's top-level handlers.
// Nested routing-group members are not nodes; their placement is governed by
// containment, not by edges.
type Graph struct {
	AppType   catalog.AppType
	Selection *HandlerSelection

	Nodes map[string]SelectedHandler
	Edges []Edge

	// First and Last map handler id to the constraint id that pins it.
	First map[string]string
	Last  map[string]string

	NearTop  map[string]NearTopSpec
	Contains []ContainsSpec
	Groups   []OrderGroup
}

// NodeIDs returns the node ids in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// EdgesFrom returns the edges leaving the given node.
func (g *Graph) EdgesFrom(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTouching returns the edges with the given node as either endpoint.
func (g *Graph) EdgesTouching(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id || e.To == id {
			out = append(out, e)
		}
	}
	return out
}

// reverseOf returns the first edge running opposite to (from, to), if any.
func (g *Graph) reverseOf(from, to string) (Edge, bool) {
	for _, e := range g.Edges {
		if e.From == to && e.To == from {
			return e, true
		}
	}
	return Edge{}, false
}

// Builder compiles a constraint set and a handler selection into a
// constraint graph.
type Builder struct {
	rules *catalog.ConstraintSet
}

// NewBuilder creates a builder over the given rule set.
func NewBuilder(rules *catalog.ConstraintSet) *Builder {
	return &Builder{rules: rules}
}

// Build compiles the graph for generation. Constraints whose referenced
// handlers are absent from the selection are skipped. requires_explicit_order
// groups must carry a hint for every member; a missing hint fails with
// UnresolvedExplicitOrderError. Direct pairwise contradictions fail with
// ContradictoryConstraintError naming both constraint ids and the handler
// pair, rather than deferring to cycle detection in the sorter.
func (b *Builder) Build(sel *HandlerSelection) (*Graph, error) {
	return b.build(sel, true)
}

// BuildLenient compiles the graph for validation: explicit-order groups with
// missing hints are recorded for reporting instead of failing.
func (b *Builder) BuildLenient(sel *HandlerSelection) (*Graph, error) {
	return b.build(sel, false)
}

func (b *Builder) build(sel *HandlerSelection, enforceHints bool) (*Graph, error) {
	g := &Graph{
		AppType:   sel.AppType,
		Selection: sel,
		Nodes:     make(map[string]SelectedHandler),
		First:     make(map[string]string),
		Last:      make(map[string]string),
		NearTop:   make(map[string]NearTopSpec),
	}
	for _, h := range sel.TopLevel() {
		g.Nodes[h.ID] = h
	}

	for _, c := range b.rules.ApplicableTo(sel.AppType) {
		if err := b.apply(g, c, enforceHints); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// apply instantiates one constraint against the graph. Kinds are dispatched
// by explicit match; adding a kind is a code change here and nowhere else.
func (b *Builder) apply(g *Graph, c catalog.Constraint, enforceHints bool) error {
	switch c.Kind {
	case catalog.KindPrecedes:
		if g.hasNode(c.A) && g.hasNode(c.B) {
			return g.addEdge(c.A, c.B, c)
		}

	case catalog.KindSucceeds:
		// succeeds(A, B): A after B, so B precedes A.
		if g.hasNode(c.A) && g.hasNode(c.B) {
			return g.addEdge(c.B, c.A, c)
		}

	case catalog.KindFirst:
		if g.hasNode(c.A) {
			for id, other := range g.First {
				if id != c.A {
					return &ContradictoryConstraintError{
						ConstraintA: other, ConstraintB: c.ID,
						HandlerA: id, HandlerB: c.A,
					}
				}
			}
			g.First[c.A] = c.ID
		}

	case catalog.KindLast:
		for _, id := range b.categoryMembers(g, c) {
			g.Last[id] = c.ID
		}

	case catalog.KindNearTop:
		if g.hasNode(c.A) {
			g.NearTop[c.A] = NearTopSpec{ConstraintID: c.ID, Threshold: c.Threshold}
		}

	case catalog.KindContains:
		members := nestedIDs(g.Selection)
		if len(members) == 0 || !g.Selection.Contains(c.Container) {
			return nil
		}
		g.Contains = append(g.Contains, ContainsSpec{
			ConstraintID: c.ID,
			Container:    c.Container,
			Members:      members,
		})

	case catalog.KindRequiresExplicitOrder:
		return b.applyExplicitOrder(g, c, enforceHints)
	}
	return nil
}

// applyExplicitOrder enforces C-10: a group of handlers whose relative order
// the rule set cannot infer needs a user hint per member. With hints, the
// group contributes chain edges between consecutive members.
func (b *Builder) applyExplicitOrder(g *Graph, c catalog.Constraint, enforceHints bool) error {
	members := b.categoryMembers(g, c)
	if len(members) < 2 {
		return nil
	}

	hints := make(map[string]int)
	var missing []string
	for _, id := range members {
		if pos, ok := g.Selection.Hints[id]; ok {
			hints[id] = pos
		} else {
			missing = append(missing, id)
		}
	}

	g.Groups = append(g.Groups, OrderGroup{
		ConstraintID: c.ID,
		Members:      members,
		Hints:        hints,
	})

	if len(missing) > 0 {
		if enforceHints {
			return &UnresolvedExplicitOrderError{ConstraintID: c.ID, Handlers: missing}
		}
		return nil
	}

	ordered := make([]string, len(members))
	copy(ordered, members)
	sort.SliceStable(ordered, func(i, j int) bool {
		if hints[ordered[i]] != hints[ordered[j]] {
			return hints[ordered[i]] < hints[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})
	for i := 0; i+1 < len(ordered); i++ {
		if err := g.addEdge(ordered[i], ordered[i+1], c); err != nil {
			return err
		}
	}
	return nil
}

// categoryMembers returns the graph nodes targeted by a category-scoped
// constraint, sorted. A constraint naming a specific handler targets it
// directly.
func (b *Builder) categoryMembers(g *Graph, c catalog.Constraint) []string {
	if c.A != "" {
		if g.hasNode(c.A) {
			return []string{c.A}
		}
		return nil
	}
	var out []string
	for id, h := range g.Nodes {
		if h.Category == c.TargetCategory {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// nestedIDs returns the routing-group member ids, sorted.
func nestedIDs(sel *HandlerSelection) []string {
	var out []string
	for _, h := range sel.NestedMembers() {
		out = append(out, h.ID)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) hasNode(id string) bool {
	_, ok := g.Nodes[id]
	return ok
}

// addEdge appends a tagged edge, failing eagerly on a direct contradiction
// with a previously instantiated constraint.
func (g *Graph) addEdge(from, to string, c catalog.Constraint) error {
	if rev, ok := g.reverseOf(from, to); ok {
		return &ContradictoryConstraintError{
			ConstraintA: rev.ConstraintID,
			ConstraintB: c.ID,
			HandlerA:    from,
			HandlerB:    to,
		}
	}
	g.Edges = append(g.Edges, Edge{
		From:         from,
		To:           to,
		ConstraintID: c.ID,
		Severity:     c.Severity,
		Rule:         c.Rule,
	})
	return nil
}
