// Package engine implements the handler queue inference and validation core.
//
// The engine is a pure, single-threaded computation per request. The pipeline
// is strictly linear with no cycles:
//
//	RequirementSpec -> Select -> Build -> Sort   (generation)
//	OrderedQueue    -> Build -> Validate         (validation)
//
// Each stage consumes only the immediately preceding stage's output; failure
// at any stage aborts the pipeline with a typed error before the next stage
// runs. Generation-path errors are fatal and carry structured handler and
// constraint ids. Validation-path rule violations are never fatal; they
// accumulate into a complete report so a single pass surfaces every problem.
//
// DETERMINISM:
//
// Selection is a pure function of the requirement spec; no hidden state, no
// randomness. The sorter is Kahn's algorithm with a total tie-break order
// (first-kind > near_top while under threshold > catalog tier > lexical id),
// so the same selection yields byte-identical queues across runs and
// platforms. Queue fingerprints are domain-separated SHA-256 over canonical
// JSON and are stable for equal queues.
//
// The catalog and rule set are process-wide read-only data; all per-request
// values are owned by the caller's stack. Independent requests may run on
// separate goroutines with no coordination.
package engine
