package catalog

// Published rule ids.
const (
	RuleTransactionAfterConnection = "C-01"
	RuleDispatchLast               = "C-02"
	RuleNestedRoutingContainment   = "C-03"
	RuleParserAfterResponse        = "C-04"
	RuleParserAfterThreadContext   = "C-05"
	RuleHealthCheckAfterResponse   = "C-06"
	RuleLoopAfterExecutor          = "C-07"
	RuleDataReadAfterLoop          = "C-08"
	RuleErrorHandlerNearTop        = "C-09"
	RuleInterceptorOrderExplicit   = "C-10"
	RuleStatusCodeFirst            = "C-11"
)

// NearTopThreshold is the concrete index bound chosen for C-09. Index 2
// admits the batch prologue (StatusCodeConvertHandler at 0) while still
// keeping GlobalErrorHandler ahead of every business handler.
const NearTopThreshold = 2

// defaultRules mirrors the published ordering rule catalog. C-11 is recovered
// from the batch reference configurations: StatusCodeConvertHandler always
// opens standalone-process queues.
var defaultRules = []Constraint{
	{
		ID:       RuleTransactionAfterConnection,
		Rule:     "TransactionManagementHandler must be after DbConnectionManagementHandler",
		Kind:     KindPrecedes,
		Severity: SeverityCritical,
		A:        HandlerDBConnection,
		B:        HandlerTransaction,
	},
	{
		ID:             RuleDispatchLast,
		Rule:           "the dispatch handler must be last in the queue",
		Kind:           KindLast,
		Severity:       SeverityCritical,
		TargetCategory: CategoryDispatch,
	},
	{
		ID:        RuleNestedRoutingContainment,
		Rule:      "routing-group handlers must be nested inside RoutesMapping",
		Kind:      KindContains,
		Severity:  SeverityCritical,
		Scope:     []AppType{AppRest},
		Container: HandlerRoutesMapping,
	},
	{
		ID:       RuleParserAfterResponse,
		Rule:     "HttpMessagingRequestParsingHandler must be after HttpResponseHandler",
		Kind:     KindPrecedes,
		Severity: SeverityCritical,
		Scope:    []AppType{AppHTTPMessaging},
		A:        HandlerHTTPResponse,
		B:        HandlerMessagingParser,
	},
	{
		ID:       RuleParserAfterThreadContext,
		Rule:     "HttpMessagingRequestParsingHandler must be after ThreadContextHandler",
		Kind:     KindPrecedes,
		Severity: SeverityCritical,
		Scope:    []AppType{AppHTTPMessaging},
		A:        HandlerThreadContext,
		B:        HandlerMessagingParser,
	},
	{
		ID:       RuleHealthCheckAfterResponse,
		Rule:     "HealthCheckEndpointHandler should be after HttpResponseHandler",
		Kind:     KindSucceeds,
		Severity: SeverityWarning,
		A:        HandlerHealthCheck,
		B:        HandlerHTTPResponse,
	},
	{
		ID:       RuleLoopAfterExecutor,
		Rule:     "LoopHandler must be after MultiThreadExecutionHandler",
		Kind:     KindPrecedes,
		Severity: SeverityCritical,
		Scope:    []AppType{AppBatch, AppBatchResident},
		A:        HandlerMultithreadExecutor,
		B:        HandlerLoop,
	},
	{
		ID:       RuleDataReadAfterLoop,
		Rule:     "DataReadHandler must be after LoopHandler",
		Kind:     KindPrecedes,
		Severity: SeverityCritical,
		Scope:    []AppType{AppBatch, AppBatchResident, AppMomMessaging},
		A:        HandlerLoop,
		B:        HandlerDataRead,
	},
	{
		ID:        RuleErrorHandlerNearTop,
		Rule:      "GlobalErrorHandler should be near the top of the queue",
		Kind:      KindNearTop,
		Severity:  SeverityWarning,
		A:         HandlerGlobalError,
		Threshold: NearTopThreshold,
	},
	{
		ID:             RuleInterceptorOrderExplicit,
		Rule:           "interceptor order must be declared explicitly",
		Kind:           KindRequiresExplicitOrder,
		Severity:       SeverityWarning,
		TargetCategory: CategoryInterceptor,
	},
	{
		ID:       RuleStatusCodeFirst,
		Rule:     "StatusCodeConvertHandler must be first in the queue",
		Kind:     KindFirst,
		Severity: SeverityCritical,
		Scope:    []AppType{AppBatch, AppBatchResident, AppMomMessaging},
		A:        HandlerStatusCodeConvert,
	},
}

var defaultRuleSet = NewConstraintSet(defaultRules)

// Rules returns the built-in ordering rule catalog.
func Rules() *ConstraintSet {
	return defaultRuleSet
}
