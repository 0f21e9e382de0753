package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hqd/internal/catalog"
)

// generate runs the full pipeline against the default knowledge bases.
func generate(t *testing.T, spec *RequirementSpec) *GenerationResult {
	t.Helper()
	res, err := Generate(spec, catalog.Default(), catalog.Rules())
	require.NoError(t, err)
	return res
}

// selection builds a bare selection over synthetic handlers for graph-level
// tests. Tiers follow slice order.
func selection(appType catalog.AppType, ids ...string) *HandlerSelection {
	sel := &HandlerSelection{AppType: appType}
	for i, id := range ids {
		sel.Handlers = append(sel.Handlers, SelectedHandler{Handler: catalog.Handler{
			ID:       id,
			AppTypes: catalog.AppTypes,
			Tier:     i,
		}})
	}
	return sel
}

func precedes(id, a, b string) catalog.Constraint {
	return catalog.Constraint{
		ID:       id,
		Rule:     a + " before " + b,
		Kind:     catalog.KindPrecedes,
		Severity: catalog.SeverityCritical,
		A:        a,
		B:        b,
	}
}

// TestSort_WebFullFeatures tests the end-to-end order of the fully featured
// web application.
func TestSort_WebFullFeatures(t *testing.T) {
	res := generate(t, webSpec())

	assert.Equal(t, []string{
		catalog.HandlerGlobalError,
		catalog.HandlerCharacterEncoding,
		catalog.HandlerHTTPResponse,
		catalog.HandlerSecure,
		catalog.HandlerHealthCheck,
		catalog.HandlerHTTPAccessLog,
		catalog.HandlerThreadContext,
		catalog.HandlerDBConnection,
		catalog.HandlerTransaction,
		catalog.HandlerSessionStore,
		catalog.HandlerCsrfVerification,
		catalog.HandlerSessionAuth,
		"audit-interceptor",
		catalog.HandlerPackageMapping,
	}, res.Queue.IDs())
}

// TestSort_BatchBasePattern tests the standalone batch order: the status code
// converter is pinned first, the dispatcher last, and the execution handlers
// keep their required relative order.
func TestSort_BatchBasePattern(t *testing.T) {
	res := generate(t, &RequirementSpec{Name: "nightly", AppType: catalog.AppBatch})

	assert.Equal(t, []string{
		catalog.HandlerStatusCodeConvert,
		catalog.HandlerGlobalError,
		catalog.HandlerThreadContext,
		catalog.HandlerMultithreadExecutor,
		catalog.HandlerLoop,
		catalog.HandlerDataRead,
	}, res.Queue.IDs())
}

// TestSort_HTTPMessaging tests that the request parser lands after both the
// response handler and the thread context handler.
func TestSort_HTTPMessaging(t *testing.T) {
	res := generate(t, &RequirementSpec{Name: "gateway", AppType: catalog.AppHTTPMessaging})

	queue := res.Queue
	assert.Less(t, queue.Index(catalog.HandlerHTTPResponse), queue.Index(catalog.HandlerMessagingParser))
	assert.Less(t, queue.Index(catalog.HandlerThreadContext), queue.Index(catalog.HandlerMessagingParser))
	assert.Equal(t, catalog.HandlerPackageMapping, queue.IDs()[len(queue.IDs())-1])
}

// TestSort_RestNesting tests that the body converter is nested inside
// RoutesMapping rather than emitted at top level.
func TestSort_RestNesting(t *testing.T) {
	res := generate(t, &RequirementSpec{Name: "api", AppType: catalog.AppRest})

	queue := res.Queue
	assert.Equal(t, -1, queue.Index(catalog.HandlerBodyConvert), "nested handler must not be at top level")

	last := queue.Entries[len(queue.Entries)-1]
	require.Equal(t, catalog.HandlerRoutesMapping, last.Handler.ID)
	require.Len(t, last.Nested, 1)
	assert.Equal(t, catalog.HandlerBodyConvert, last.Nested[0].ID)
}

// TestSort_GlobalErrorNearTop tests C-09: the error handler sorts ahead of
// lower-tier handlers while the output is under the threshold.
func TestSort_GlobalErrorNearTop(t *testing.T) {
	res := generate(t, &RequirementSpec{Name: "plain", AppType: catalog.AppWeb})

	idx := res.Queue.Index(catalog.HandlerGlobalError)
	assert.LessOrEqual(t, idx, catalog.NearTopThreshold)
}

// TestSort_ExplicitOrderHintsRespected tests that hint order overrides lexical
// order within the interceptor group.
func TestSort_ExplicitOrderHintsRespected(t *testing.T) {
	spec := &RequirementSpec{
		Name:    "audited",
		AppType: catalog.AppWeb,
		Interceptors: []Interceptor{
			{Name: "alpha-interceptor", Order: intPtr(2)},
			{Name: "zulu-interceptor", Order: intPtr(1)},
		},
	}
	res := generate(t, spec)

	queue := res.Queue
	assert.Less(t, queue.Index("zulu-interceptor"), queue.Index("alpha-interceptor"),
		"hint order must win over lexical order")
}

// TestBuild_UnresolvedExplicitOrder tests C-10: two interceptors without
// hints cannot be ordered.
func TestBuild_UnresolvedExplicitOrder(t *testing.T) {
	spec := &RequirementSpec{
		Name:    "unordered",
		AppType: catalog.AppWeb,
		Interceptors: []Interceptor{
			{Name: "alpha-interceptor"},
			{Name: "zulu-interceptor"},
		},
	}
	_, err := Generate(spec, catalog.Default(), catalog.Rules())

	var orderErr *UnresolvedExplicitOrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, catalog.RuleInterceptorOrderExplicit, orderErr.ConstraintID)
	assert.ElementsMatch(t, []string{"alpha-interceptor", "zulu-interceptor"}, orderErr.Handlers)
	assert.Equal(t, ErrCodeUnresolvedExplicitOrder, ErrorCode(err))
}

// TestBuild_DirectContradiction tests that two rules demanding opposite order
// fail at build time, naming both rule ids.
func TestBuild_DirectContradiction(t *testing.T) {
	rules := catalog.NewConstraintSet([]catalog.Constraint{
		precedes("R-01", "a", "b"),
		precedes("R-02", "b", "a"),
	})

	_, err := NewBuilder(rules).Build(selection(catalog.AppWeb, "a", "b"))

	var contraErr *ContradictoryConstraintError
	require.ErrorAs(t, err, &contraErr)
	assert.Equal(t, "R-01", contraErr.ConstraintA)
	assert.Equal(t, "R-02", contraErr.ConstraintB)
	assert.Equal(t, ErrCodeContradictoryConstraint, ErrorCode(err))
}

// TestSort_EmergentCycle tests that a cycle spanning three rules, invisible
// to pairwise checks, is caught by the sorter and reported as a closed path.
func TestSort_EmergentCycle(t *testing.T) {
	rules := catalog.NewConstraintSet([]catalog.Constraint{
		precedes("R-01", "a", "b"),
		precedes("R-02", "b", "c"),
		precedes("R-03", "c", "a"),
	})

	g, err := NewBuilder(rules).Build(selection(catalog.AppWeb, "a", "b", "c"))
	require.NoError(t, err, "no pairwise contradiction exists")

	_, err = Sort(g)
	var cycleErr *CyclicConstraintError
	require.ErrorAs(t, err, &cycleErr)
	assert.Equal(t, []string{"a", "b", "c", "a"}, cycleErr.Cycle)
	assert.Equal(t, ErrCodeCyclicConstraint, ErrorCode(err))
}

// TestSort_TwoLastPins tests that two handlers pinned last contradict each
// other.
func TestSort_TwoLastPins(t *testing.T) {
	rules := catalog.NewConstraintSet([]catalog.Constraint{
		{ID: "R-01", Rule: "a last", Kind: catalog.KindLast, Severity: catalog.SeverityCritical, A: "a"},
		{ID: "R-02", Rule: "b last", Kind: catalog.KindLast, Severity: catalog.SeverityCritical, A: "b"},
	})

	g, err := NewBuilder(rules).Build(selection(catalog.AppWeb, "a", "b", "c"))
	require.NoError(t, err)

	_, err = Sort(g)
	var contraErr *ContradictoryConstraintError
	require.ErrorAs(t, err, &contraErr)
	assert.Equal(t, "a", contraErr.HandlerA)
	assert.Equal(t, "b", contraErr.HandlerB)
}

// TestSort_Deterministic tests that repeated runs over the same spec yield
// byte-identical queues and fingerprints.
func TestSort_Deterministic(t *testing.T) {
	first := generate(t, webSpec())
	for i := 0; i < 20; i++ {
		next := generate(t, webSpec())
		assert.Equal(t, first.Queue.IDs(), next.Queue.IDs())
		assert.Equal(t, first.Fingerprint, next.Fingerprint)
	}
}

// TestSort_Completeness tests that every selected top-level handler appears
// exactly once.
func TestSort_Completeness(t *testing.T) {
	res := generate(t, webSpec())

	seen := make(map[string]int)
	for _, id := range res.Queue.IDs() {
		seen[id]++
	}
	for _, h := range res.Selection.TopLevel() {
		assert.Equal(t, 1, seen[h.ID], "handler %s must appear exactly once", h.ID)
	}
	assert.Len(t, res.Queue.Entries, len(res.Selection.TopLevel()))
}

// TestSort_Soundness tests that the produced order satisfies every edge of
// its own graph.
func TestSort_Soundness(t *testing.T) {
	for _, appType := range catalog.AppTypes {
		res := generate(t, &RequirementSpec{Name: "probe", AppType: appType})
		for _, e := range res.Graph.Edges {
			assert.Less(t, res.Queue.Index(e.From), res.Queue.Index(e.To),
				"%s: edge %s -> %s (%s) violated", appType, e.From, e.To, e.ConstraintID)
		}
	}
}
