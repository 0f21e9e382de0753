package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hqd/internal/catalog"
)

func intPtr(n int) *int { return &n }

// webSpec builds the full-featured web requirements used across tests.
func webSpec() *RequirementSpec {
	return &RequirementSpec{
		Name:    "Customer Management System",
		AppType: catalog.AppWeb,
		Features: map[string]Feature{
			FeatureDatabase: {Enabled: true, Attrs: map[string]string{
				"type":        "PostgreSQL",
				"transaction": "required",
			}},
			FeatureAuthentication: {Enabled: true, Attrs: map[string]string{
				"type":        "session",
				"login_check": "true",
			}},
			FeatureSecurity: {Enabled: true, Attrs: map[string]string{
				"csrf_protection": "true",
				"secure_headers":  "true",
			}},
			FeatureSession: {Enabled: true, Attrs: map[string]string{"store": "db"}},
			FeatureLogging: {Enabled: true, Attrs: map[string]string{
				"access_log": "true",
				"sql_log":    "true",
			}},
			FeatureHealthCheck: {Enabled: true},
		},
		Interceptors: []Interceptor{
			{Name: "audit-interceptor", Order: intPtr(1), Description: "Audit logging"},
		},
	}
}

// TestSelect_WebFullFeatures tests the selection for a fully featured web
// application.
func TestSelect_WebFullFeatures(t *testing.T) {
	sel, err := NewSelector(catalog.Default()).Select(webSpec())
	require.NoError(t, err)

	want := []string{
		"audit-interceptor",
		catalog.HandlerCsrfVerification,
		catalog.HandlerDBConnection,
		catalog.HandlerGlobalError,
		catalog.HandlerHealthCheck,
		catalog.HandlerHTTPAccessLog,
		catalog.HandlerCharacterEncoding,
		catalog.HandlerHTTPResponse,
		catalog.HandlerPackageMapping,
		catalog.HandlerSecure,
		catalog.HandlerSessionAuth,
		catalog.HandlerSessionStore,
		catalog.HandlerThreadContext,
		catalog.HandlerTransaction,
	}
	assert.ElementsMatch(t, want, sel.IDs())

	// Ids come back sorted.
	ids := sel.IDs()
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i])
	}

	db, ok := sel.Lookup(catalog.HandlerDBConnection)
	require.True(t, ok)
	assert.Equal(t, "connectionFactory", db.Properties["connectionFactory"])
	assert.Equal(t, "PostgreSQL", db.Properties["dbType"])
	assert.Equal(t, "true", db.Properties["sqlLogEnabled"])

	store, ok := sel.Lookup(catalog.HandlerSessionStore)
	require.True(t, ok)
	assert.Equal(t, "db", store.Properties["storeName"])

	assert.Equal(t, map[string]int{"audit-interceptor": 1}, sel.Hints)
}

// TestSelect_RestBasePattern tests that the REST base pattern carries the
// nested body converter.
func TestSelect_RestBasePattern(t *testing.T) {
	spec := &RequirementSpec{Name: "api", AppType: catalog.AppRest}
	sel, err := NewSelector(catalog.Default()).Select(spec)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		catalog.HandlerBodyConvert,
		catalog.HandlerGlobalError,
		catalog.HandlerJaxRsResponse,
		catalog.HandlerRoutesMapping,
		catalog.HandlerThreadContext,
	}, sel.IDs())

	nested := sel.NestedMembers()
	require.Len(t, nested, 1)
	assert.Equal(t, catalog.HandlerBodyConvert, nested[0].ID)
}

// TestSelect_TransactionWithoutDatabase tests the dependency check on the
// transaction feature.
func TestSelect_TransactionWithoutDatabase(t *testing.T) {
	spec := &RequirementSpec{
		Name:    "broken",
		AppType: catalog.AppWeb,
		Features: map[string]Feature{
			FeatureDatabase: {Enabled: false, Attrs: map[string]string{"transaction": "required"}},
		},
	}
	_, err := NewSelector(catalog.Default()).Select(spec)

	var depErr *MissingDependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "database.transaction", depErr.Feature)
	assert.Equal(t, "database.enabled", depErr.Requires)
	assert.Equal(t, ErrCodeMissingDependency, ErrorCode(err))
}

// TestSelect_CsrfWithoutSession tests that CSRF protection requires the
// session store.
func TestSelect_CsrfWithoutSession(t *testing.T) {
	spec := &RequirementSpec{
		Name:    "broken",
		AppType: catalog.AppWeb,
		Features: map[string]Feature{
			FeatureSecurity: {Enabled: true, Attrs: map[string]string{"csrf_protection": "true"}},
		},
	}
	_, err := NewSelector(catalog.Default()).Select(spec)

	var depErr *MissingDependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "security.csrf_protection", depErr.Feature)
}

// TestSelect_SQLLogWithoutDatabase tests the sql_log prerequisite.
func TestSelect_SQLLogWithoutDatabase(t *testing.T) {
	spec := &RequirementSpec{
		Name:    "broken",
		AppType: catalog.AppWeb,
		Features: map[string]Feature{
			FeatureLogging: {Enabled: true, Attrs: map[string]string{"sql_log": "true"}},
		},
	}
	_, err := NewSelector(catalog.Default()).Select(spec)

	var depErr *MissingDependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "logging.sql_log", depErr.Feature)
}

// TestSelect_ConflictingAlternatives tests that forcing token-auth through an
// interceptor while the mechanism selects session-auth is rejected.
func TestSelect_ConflictingAlternatives(t *testing.T) {
	spec := &RequirementSpec{
		Name:    "conflicted",
		AppType: catalog.AppWeb,
		Features: map[string]Feature{
			FeatureAuthentication: {Enabled: true, Attrs: map[string]string{"type": "session"}},
		},
		Interceptors: []Interceptor{
			{Name: catalog.HandlerTokenAuth, Order: intPtr(1)},
		},
	}
	_, err := NewSelector(catalog.Default()).Select(spec)

	var conflictErr *ConflictingAlternativeError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, catalog.HandlerSessionAuth, conflictErr.HandlerA)
	assert.Equal(t, catalog.HandlerTokenAuth, conflictErr.HandlerB)
	assert.Equal(t, ErrCodeConflictingAlternative, ErrorCode(err))
}

// TestSelect_InapplicableFeatureHandlerSkipped tests that a feature handler
// outside the app type's applicability is silently skipped.
func TestSelect_InapplicableFeatureHandlerSkipped(t *testing.T) {
	spec := &RequirementSpec{
		Name:    "nightly",
		AppType: catalog.AppBatch,
		Features: map[string]Feature{
			FeatureHealthCheck: {Enabled: true},
		},
	}
	sel, err := NewSelector(catalog.Default()).Select(spec)
	require.NoError(t, err)
	assert.False(t, sel.Contains(catalog.HandlerHealthCheck))
}

// TestSelect_CustomInterceptor tests synthesis of a non-catalog interceptor.
func TestSelect_CustomInterceptor(t *testing.T) {
	spec := &RequirementSpec{
		Name:    "audited",
		AppType: catalog.AppWeb,
		Interceptors: []Interceptor{
			{Name: "audit-interceptor", Class: "com.example.AuditHandler", Order: intPtr(2)},
		},
	}
	sel, err := NewSelector(catalog.Default()).Select(spec)
	require.NoError(t, err)

	h, ok := sel.Lookup("audit-interceptor")
	require.True(t, ok)
	assert.Equal(t, "com.example.AuditHandler", h.ClassPath)
	assert.Equal(t, "AuditHandler", h.Name)
	assert.Equal(t, catalog.CategoryInterceptor, h.Category)
	assert.Equal(t, map[string]int{"audit-interceptor": 2}, sel.Hints)
}

// TestSelect_UnsupportedAppType tests rejection of unknown application types.
func TestSelect_UnsupportedAppType(t *testing.T) {
	spec := &RequirementSpec{Name: "odd", AppType: "desktop"}
	_, err := NewSelector(catalog.Default()).Select(spec)

	var appErr *catalog.UnsupportedAppTypeError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, ErrCodeUnsupportedAppType, ErrorCode(err))
}

// TestSelect_Deterministic tests that repeated selection yields identical
// results.
func TestSelect_Deterministic(t *testing.T) {
	first, err := NewSelector(catalog.Default()).Select(webSpec())
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		next, err := NewSelector(catalog.Default()).Select(webSpec())
		require.NoError(t, err)
		assert.Equal(t, first.IDs(), next.IDs())
	}
}
