package engine

import (
	"sort"
)

// Sort produces a deterministic ordered queue from the constraint graph
// using a variant of Kahn's algorithm.
//
// Tie-break among ready nodes, in order of precedence:
//  1. a handler pinned by a first-kind constraint always wins;
//  2. a handler carrying a near_top constraint is preferred while the output
//     is still shorter than its threshold;
//  3. lower catalog priority tier wins;
//  4. lexical order of handler id.
//
// A handler pinned by a last-kind constraint is excluded from the ready set
// until it is the only remaining node; two handlers pinned last fail with
// ContradictoryConstraintError. If no valid order exists the minimal cycle is
// extracted with Tarjan's algorithm and reported as CyclicConstraintError.
func Sort(g *Graph) (*OrderedQueue, error) {
	if len(g.Last) > 1 {
		return nil, twoLastError(g)
	}

	indegree := make(map[string]int, len(g.Nodes))
	successors := make(map[string][]string, len(g.Nodes))
	for id := range g.Nodes {
		indegree[id] = 0
	}
	for _, e := range g.Edges {
		indegree[e.To]++
		successors[e.From] = append(successors[e.From], e.To)
	}

	var ready []string
	for id, d := range indegree {
		if d == 0 {
			ready = append(ready, id)
		}
	}

	var order []string
	remaining := len(g.Nodes)

	for remaining > 0 {
		id, ok := pickNext(g, ready, len(order), remaining)
		if !ok {
			return nil, cycleError(g, order)
		}

		order = append(order, id)
		remaining--
		ready = remove(ready, id)

		for _, succ := range successors[id] {
			indegree[succ]--
			if indegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	return assemble(g, order), nil
}

// pickNext selects the next handler from the ready set per the tie-break
// order. Last-pinned handlers are eligible only when nothing else remains.
func pickNext(g *Graph, ready []string, emitted, remaining int) (string, bool) {
	var candidates []string
	for _, id := range ready {
		if _, isLast := g.Last[id]; isLast && remaining > 1 {
			continue
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		_, aFirst := g.First[a]
		_, bFirst := g.First[b]
		if aFirst != bFirst {
			return aFirst
		}

		aNear := nearTopWants(g, a, emitted)
		bNear := nearTopWants(g, b, emitted)
		if aNear != bNear {
			return aNear
		}

		if g.Nodes[a].Tier != g.Nodes[b].Tier {
			return g.Nodes[a].Tier < g.Nodes[b].Tier
		}
		return a < b
	})
	return candidates[0], true
}

// nearTopWants reports whether the handler carries a near_top constraint
// whose threshold has not been reached yet.
func nearTopWants(g *Graph, id string, emitted int) bool {
	spec, ok := g.NearTop[id]
	return ok && emitted < spec.Threshold
}

func remove(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// assemble builds the ordered queue, attaching nested routing-group members
// to their container entries.
func assemble(g *Graph, order []string) *OrderedQueue {
	nestedFor := make(map[string][]SelectedHandler)
	assigned := make(map[string]bool)
	for _, spec := range g.Contains {
		for _, id := range spec.Members {
			if h, ok := g.Selection.Lookup(id); ok && !assigned[id] {
				nestedFor[spec.Container] = append(nestedFor[spec.Container], h)
				assigned[id] = true
			}
		}
	}
	// Nested members not claimed by a containment rule fall to the queue tail.
	var unclaimed []SelectedHandler
	for _, h := range g.Selection.NestedMembers() {
		if !assigned[h.ID] {
			unclaimed = append(unclaimed, h)
		}
	}

	q := &OrderedQueue{AppType: g.AppType, Entries: make([]QueueEntry, 0, len(order))}
	for i, id := range order {
		nested := nestedFor[id]
		if i == len(order)-1 {
			nested = append(nested, unclaimed...)
		}
		sortNested(nested)
		q.Entries = append(q.Entries, QueueEntry{Handler: g.Nodes[id], Nested: nested})
	}
	return q
}

func sortNested(hs []SelectedHandler) {
	sort.Slice(hs, func(i, j int) bool {
		if hs[i].Tier != hs[j].Tier {
			return hs[i].Tier < hs[j].Tier
		}
		return hs[i].ID < hs[j].ID
	})
}

// twoLastError reports the two lowest last-pinned handlers and their rules.
func twoLastError(g *Graph) error {
	ids := make([]string, 0, len(g.Last))
	for id := range g.Last {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return &ContradictoryConstraintError{
		ConstraintA: g.Last[ids[0]],
		ConstraintB: g.Last[ids[1]],
		HandlerA:    ids[0],
		HandlerB:    ids[1],
	}
}

// cycleError extracts the minimal cycle among the handlers not yet emitted.
// Uses Tarjan's strongly connected components over the remaining subgraph;
// the smallest SCC with a cycle is reported.
func cycleError(g *Graph, emitted []string) error {
	done := make(map[string]bool, len(emitted))
	for _, id := range emitted {
		done[id] = true
	}

	graph := make(map[string][]string)
	for id := range g.Nodes {
		if !done[id] {
			graph[id] = nil
		}
	}
	for _, e := range g.Edges {
		if !done[e.From] && !done[e.To] {
			graph[e.From] = append(graph[e.From], e.To)
		}
	}

	sccs := tarjanSCC(graph)

	var best []string
	for _, scc := range sccs {
		if len(scc) < 2 && !hasSelfLoop(scc[0], graph) {
			continue
		}
		if best == nil || len(scc) < len(best) {
			best = scc
		}
	}
	if best == nil {
		// Remaining nodes blocked only by last-pinning; report them all.
		best = make([]string, 0, len(graph))
		for id := range graph {
			best = append(best, id)
		}
	}
	sort.Strings(best)

	return &CyclicConstraintError{Cycle: reconstructCycle(best, graph)}
}

func hasSelfLoop(node string, graph map[string][]string) bool {
	for _, n := range graph[node] {
		if n == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components. Nodes are visited in sorted
// order so the result is deterministic.
func tarjanSCC(graph map[string][]string) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && indices[w] < lowlink[v] {
				lowlink[v] = indices[w]
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for id := range graph {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)
	for _, id := range nodes {
		if _, visited := indices[id]; !visited {
			strongConnect(id)
		}
	}
	return sccs
}

// reconstructCycle walks the SCC from its lexically first member back to
// itself, producing a closed path.
func reconstructCycle(scc []string, graph map[string][]string) []string {
	if len(scc) == 0 {
		return nil
	}
	member := make(map[string]bool, len(scc))
	for _, id := range scc {
		member[id] = true
	}

	start := scc[0]
	path := []string{start}
	visited := map[string]bool{start: true}
	current := start

	for {
		next := ""
		neighbors := append([]string(nil), graph[current]...)
		sort.Strings(neighbors)
		for _, n := range neighbors {
			if member[n] && (!visited[n] || n == start) {
				next = n
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}
	return path
}
