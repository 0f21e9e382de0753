package engine

import (
	"github.com/roach88/hqd/internal/catalog"
)

// GenerationResult bundles the outputs of a successful generation run for
// rendering: the queue itself plus the graph that justified it.
type GenerationResult struct {
	Project     string
	Spec        *RequirementSpec
	Selection   *HandlerSelection
	Graph       *Graph
	Queue       *OrderedQueue
	Fingerprint string
}

// Generate runs the full generation pipeline: Select -> Build -> Sort.
// Failure at any stage aborts with that stage's typed error.
func Generate(spec *RequirementSpec, cat *catalog.Catalog, rules *catalog.ConstraintSet) (*GenerationResult, error) {
	selection, err := NewSelector(cat).Select(spec)
	if err != nil {
		return nil, err
	}

	graph, err := NewBuilder(rules).Build(selection)
	if err != nil {
		return nil, err
	}

	queue, err := Sort(graph)
	if err != nil {
		return nil, err
	}

	fingerprint, err := queue.Fingerprint()
	if err != nil {
		return nil, err
	}

	return &GenerationResult{
		Project:     spec.Name,
		Spec:        spec,
		Selection:   selection,
		Graph:       graph,
		Queue:       queue,
		Fingerprint: fingerprint,
	}, nil
}
