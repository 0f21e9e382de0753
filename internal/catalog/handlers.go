package catalog

// Handler IDs referenced by ordering rules and feature bindings.
const (
	HandlerStatusCodeConvert    = "status-code-convert"
	HandlerGlobalError          = "global-error-handler"
	HandlerCharacterEncoding    = "http-character-encoding"
	HandlerHTTPResponse         = "http-response"
	HandlerJaxRsResponse        = "jaxrs-response"
	HandlerSecure               = "secure-handler"
	HandlerHealthCheck          = "health-check"
	HandlerHTTPAccessLog        = "http-access-log"
	HandlerThreadContext        = "thread-context"
	HandlerMessagingContext     = "messaging-context"
	HandlerRetry                = "retry-handler"
	HandlerDBConnection         = "db-connection"
	HandlerTransaction          = "transaction-management"
	HandlerSessionStore         = "session-store"
	HandlerCsrfVerification     = "csrf-token-verification"
	HandlerSessionAuth          = "session-auth"
	HandlerTokenAuth            = "token-auth"
	HandlerMultithreadExecutor  = "multithread-executor"
	HandlerLoop                 = "loop"
	HandlerMessagingParser      = "messaging-parser"
	HandlerDataRead             = "data-read"
	HandlerPackageMapping       = "package-mapping"
	HandlerRoutesMapping        = "routes-mapping"
	HandlerBodyConvert          = "body-convert"
)

var webLike = []AppType{AppWeb, AppRest, AppHTTPMessaging}
var batchLike = []AppType{AppBatch, AppBatchResident, AppMomMessaging}
var allTypes = AppTypes

// defaultHandlers is the built-in handler knowledge base. Tiers mirror the
// canonical Nablarch queue order so that unconstrained handlers fall into
// their conventional positions.
var defaultHandlers = []Handler{
	{
		ID:          HandlerStatusCodeConvert,
		Name:        "StatusCodeConvertHandler",
		ClassPath:   "nablarch.fw.handler.StatusCodeConvertHandler",
		Category:    CategoryConversion,
		AppTypes:    batchLike,
		RequiredFor: batchLike,
		Tier:        0,
		Description: "Converts process exit status codes",
	},
	{
		ID:          HandlerGlobalError,
		Name:        "GlobalErrorHandler",
		ClassPath:   "nablarch.fw.handler.GlobalErrorHandler",
		Category:    CategoryError,
		AppTypes:    allTypes,
		RequiredFor: allTypes,
		Tier:        1,
		Description: "Catches all uncaught exceptions",
	},
	{
		ID:          HandlerCharacterEncoding,
		Name:        "HttpCharacterEncodingHandler",
		ClassPath:   "nablarch.fw.web.handler.HttpCharacterEncodingHandler",
		Category:    CategoryConversion,
		AppTypes:    []AppType{AppWeb},
		RequiredFor: []AppType{AppWeb},
		Tier:        2,
		Description: "Sets request and response character encoding",
	},
	{
		ID:          HandlerHTTPResponse,
		Name:        "HttpResponseHandler",
		ClassPath:   "nablarch.fw.web.handler.HttpResponseHandler",
		Category:    CategoryResponse,
		AppTypes:    []AppType{AppWeb, AppHTTPMessaging},
		RequiredFor: []AppType{AppWeb, AppHTTPMessaging},
		Tier:        3,
		Description: "Converts HttpResponse to servlet response",
	},
	{
		ID:          HandlerJaxRsResponse,
		Name:        "JaxRsResponseHandler",
		ClassPath:   "nablarch.fw.jaxrs.JaxRsResponseHandler",
		Category:    CategoryResponse,
		AppTypes:    []AppType{AppRest},
		RequiredFor: []AppType{AppRest},
		Tier:        3,
		Description: "Converts action return values to HTTP responses",
	},
	{
		ID:          HandlerSecure,
		Name:        "SecureHandler",
		ClassPath:   "nablarch.fw.web.handler.SecureHandler",
		Category:    CategorySecurity,
		AppTypes:    webLike,
		Tier:        4,
		Description: "Adds security response headers",
	},
	{
		ID:          HandlerHealthCheck,
		Name:        "HealthCheckEndpointHandler",
		ClassPath:   "nablarch.fw.web.handler.HealthCheckEndpointHandler",
		Category:    CategoryResponse,
		AppTypes:    []AppType{AppWeb, AppRest},
		Tier:        5,
		Description: "Serves health check requests before dispatch",
	},
	{
		ID:          HandlerHTTPAccessLog,
		Name:        "HttpAccessLogHandler",
		ClassPath:   "nablarch.common.web.handler.HttpAccessLogHandler",
		Category:    CategoryLog,
		AppTypes:    webLike,
		Tier:        6,
		Description: "Writes the HTTP access log",
	},
	{
		ID:          HandlerThreadContext,
		Name:        "ThreadContextHandler",
		ClassPath:   "nablarch.common.handler.threadcontext.ThreadContextHandler",
		Category:    CategoryContext,
		AppTypes:    allTypes,
		RequiredFor: allTypes,
		Tier:        7,
		Description: "Initializes thread context variables (request id, user id, language)",
	},
	{
		ID:          HandlerMessagingContext,
		Name:        "MessagingContextHandler",
		ClassPath:   "nablarch.fw.messaging.handler.MessagingContextHandler",
		Category:    CategoryMessaging,
		AppTypes:    []AppType{AppMomMessaging},
		RequiredFor: []AppType{AppMomMessaging},
		Tier:        8,
		Description: "Manages the MOM messaging context",
	},
	{
		ID:          HandlerRetry,
		Name:        "RetryHandler",
		ClassPath:   "nablarch.fw.handler.RetryHandler",
		Category:    CategoryExecution,
		AppTypes:    []AppType{AppBatchResident, AppMomMessaging},
		RequiredFor: []AppType{AppBatchResident},
		Tier:        9,
		Description: "Retries the resident process on recoverable failures",
	},
	{
		ID:          HandlerDBConnection,
		Name:        "DbConnectionManagementHandler",
		ClassPath:   "nablarch.common.handler.DbConnectionManagementHandler",
		Category:    CategoryDatabase,
		AppTypes:    allTypes,
		Tier:        10,
		Description: "Manages database connection lifecycle",
	},
	{
		ID:          HandlerTransaction,
		Name:        "TransactionManagementHandler",
		ClassPath:   "nablarch.common.handler.TransactionManagementHandler",
		Category:    CategoryTransaction,
		AppTypes:    allTypes,
		Tier:        11,
		Description: "Demarcates the request transaction",
	},
	{
		ID:          HandlerSessionStore,
		Name:        "SessionStoreHandler",
		ClassPath:   "nablarch.common.web.session.SessionStoreHandler",
		Category:    CategorySession,
		AppTypes:    []AppType{AppWeb, AppRest},
		Tier:        12,
		Description: "Loads and saves the session store",
	},
	{
		ID:          HandlerCsrfVerification,
		Name:        "CsrfTokenVerificationHandler",
		ClassPath:   "nablarch.fw.web.handler.CsrfTokenVerificationHandler",
		Category:    CategorySecurity,
		AppTypes:    []AppType{AppWeb},
		Tier:        13,
		Description: "Verifies CSRF tokens on state-changing requests",
	},
	{
		ID:           HandlerSessionAuth,
		Name:         "LoginUserPrincipalCheckHandler",
		ClassPath:    "nablarch.common.authentication.LoginUserPrincipalCheckHandler",
		Category:     CategoryAuth,
		AppTypes:     []AppType{AppWeb},
		Tier:         14,
		Alternatives: []string{HandlerTokenAuth},
		Description:  "Checks the session-based login principal",
	},
	{
		ID:           HandlerTokenAuth,
		Name:         "TokenAuthenticationHandler",
		ClassPath:    "nablarch.common.authentication.TokenAuthenticationHandler",
		Category:     CategoryAuth,
		AppTypes:     webLike,
		Tier:         14,
		Alternatives: []string{HandlerSessionAuth},
		Description:  "Verifies bearer token credentials",
	},
	{
		ID:          HandlerMultithreadExecutor,
		Name:        "MultiThreadExecutionHandler",
		ClassPath:   "nablarch.fw.handler.MultiThreadExecutionHandler",
		Category:    CategoryExecution,
		AppTypes:    batchLike,
		RequiredFor: batchLike,
		Tier:        15,
		Description: "Manages multi-threaded batch execution",
	},
	{
		ID:          HandlerLoop,
		Name:        "LoopHandler",
		ClassPath:   "nablarch.fw.handler.LoopHandler",
		Category:    CategoryExecution,
		AppTypes:    batchLike,
		RequiredFor: batchLike,
		Tier:        16,
		Description: "Controls loop processing and per-loop transactions",
	},
	{
		ID:          HandlerMessagingParser,
		Name:        "HttpMessagingRequestParsingHandler",
		ClassPath:   "nablarch.fw.web.handler.HttpMessagingRequestParsingHandler",
		Category:    CategoryMessaging,
		AppTypes:    []AppType{AppHTTPMessaging},
		RequiredFor: []AppType{AppHTTPMessaging},
		Tier:        17,
		Description: "Parses HTTP messaging request bodies into framework messages",
	},
	{
		ID:          HandlerDataRead,
		Name:        "DataReadHandler",
		ClassPath:   "nablarch.fw.handler.DataReadHandler",
		Category:    CategoryDispatch,
		AppTypes:    batchLike,
		RequiredFor: batchLike,
		Tier:        90,
		Description: "Reads input data and dispatches batch actions",
	},
	{
		ID:          HandlerPackageMapping,
		Name:        "HttpRequestJavaPackageMapping",
		ClassPath:   "nablarch.fw.web.handler.HttpRequestJavaPackageMapping",
		Category:    CategoryDispatch,
		AppTypes:    []AppType{AppWeb, AppHTTPMessaging},
		RequiredFor: []AppType{AppWeb, AppHTTPMessaging},
		Tier:        90,
		Description: "Dispatches to action classes by package mapping",
	},
	{
		ID:          HandlerRoutesMapping,
		Name:        "RoutesMapping",
		ClassPath:   "nablarch.integration.router.RoutesMapping",
		Category:    CategoryDispatch,
		AppTypes:    []AppType{AppRest},
		RequiredFor: []AppType{AppRest},
		Tier:        90,
		Description: "Routes requests to JAX-RS resource methods",
	},
	{
		ID:          HandlerBodyConvert,
		Name:        "BodyConvertHandler",
		ClassPath:   "nablarch.fw.jaxrs.BodyConvertHandler",
		Category:    CategoryConversion,
		AppTypes:    []AppType{AppRest},
		RequiredFor: []AppType{AppRest},
		Tier:        95,
		Nested:      true,
		Description: "Converts request and response bodies for resource methods",
	},
}

var defaultCatalog = NewCatalog(defaultHandlers)

// Default returns the built-in handler catalog.
func Default() *Catalog {
	return defaultCatalog
}
