package catalog

import (
	"fmt"
	"sort"
)

// AppType identifies one of the six supported application shapes.
type AppType string

const (
	AppWeb           AppType = "web"
	AppRest          AppType = "rest"
	AppBatch         AppType = "batch"
	AppBatchResident AppType = "batch_resident"
	AppMomMessaging  AppType = "mom_messaging"
	AppHTTPMessaging AppType = "http_messaging"
)

// AppTypes lists all supported application types in declaration order.
var AppTypes = []AppType{
	AppWeb,
	AppRest,
	AppBatch,
	AppBatchResident,
	AppMomMessaging,
	AppHTTPMessaging,
}

// Valid reports whether the app type is one of the supported six.
func (t AppType) Valid() bool {
	for _, a := range AppTypes {
		if a == t {
			return true
		}
	}
	return false
}

// Category classifies a handler by its role in the queue.
type Category string

const (
	CategoryError       Category = "error"
	CategoryConversion  Category = "conversion"
	CategoryResponse    Category = "response"
	CategoryContext     Category = "context"
	CategoryDatabase    Category = "database"
	CategoryTransaction Category = "transaction"
	CategorySession     Category = "session"
	CategorySecurity    Category = "security"
	CategoryAuth        Category = "auth"
	CategoryLog         Category = "log"
	CategoryExecution   Category = "execution"
	CategoryMessaging   Category = "messaging"
	CategoryDispatch    Category = "dispatch"
	CategoryInterceptor Category = "interceptor"
)

// Handler describes one stage in an application's request-processing
// pipeline. Handlers are immutable catalog data; per-request configuration
// attributes live on engine.SelectedHandler, never here.
type Handler struct {
	// ID is the unique kebab-case identifier used by constraints and
	// requirement specs.
	ID string `json:"id"`

	// Name is the Nablarch class name (without package).
	Name string `json:"name"`

	// ClassPath is the fully qualified class used in generated configuration.
	ClassPath string `json:"class_path"`

	// Category groups the handler for category-scoped rules (e.g. dispatch-last).
	Category Category `json:"category"`

	// AppTypes lists the application types this handler is applicable to.
	AppTypes []AppType `json:"app_types"`

	// RequiredFor lists the application types whose base pattern always
	// includes this handler.
	RequiredFor []AppType `json:"required_for,omitempty"`

	// Tier is the priority tier used only for deterministic tie-breaking in
	// the topological sort. Lower tiers sort earlier among unconstrained
	// handlers. Tiers follow the canonical Nablarch queue order.
	Tier int `json:"tier"`

	// Alternatives lists handler IDs that are mutually exclusive with this
	// one (e.g. session-based vs token-based authentication).
	Alternatives []string `json:"alternatives,omitempty"`

	// Nested marks routing-group members that must be rendered inside the
	// dispatch handler's inner list rather than at the top level (C-03).
	Nested bool `json:"nested,omitempty"`

	// Description is the human-readable role, used in rendered comments.
	Description string `json:"description"`
}

// ApplicableTo reports whether the handler may appear in queues of the given
// application type.
func (h Handler) ApplicableTo(t AppType) bool {
	for _, a := range h.AppTypes {
		if a == t {
			return true
		}
	}
	return false
}

// requiredFor reports whether the handler belongs to the base pattern of the
// given application type.
func (h Handler) requiredFor(t AppType) bool {
	for _, a := range h.RequiredFor {
		if a == t {
			return true
		}
	}
	return false
}

// UnknownHandlerError reports a catalog miss.
type UnknownHandlerError struct {
	ID string
}

func (e *UnknownHandlerError) Error() string {
	return fmt.Sprintf("unknown handler: %q is not in the handler catalog", e.ID)
}

// UnsupportedAppTypeError reports an application type outside the supported six.
type UnsupportedAppTypeError struct {
	Type string
}

func (e *UnsupportedAppTypeError) Error() string {
	return fmt.Sprintf("unsupported application type: %q (must be one of %v)", e.Type, AppTypes)
}

// Catalog is the read-only handler lookup table.
type Catalog struct {
	byID    map[string]Handler
	byClass map[string]Handler
	ordered []Handler // declaration order, for stable enumeration
}

// NewCatalog builds a catalog from handler definitions. Used by tests to
// construct reduced catalogs; production code uses Default().
func NewCatalog(handlers []Handler) *Catalog {
	c := &Catalog{
		byID:    make(map[string]Handler, len(handlers)),
		byClass: make(map[string]Handler, len(handlers)),
		ordered: make([]Handler, len(handlers)),
	}
	copy(c.ordered, handlers)
	for _, h := range handlers {
		c.byID[h.ID] = h
		c.byClass[h.ClassPath] = h
	}
	return c
}

// Lookup returns the handler with the given ID.
func (c *Catalog) Lookup(id string) (Handler, error) {
	h, ok := c.byID[id]
	if !ok {
		return Handler{}, &UnknownHandlerError{ID: id}
	}
	return h, nil
}

// LookupByClass returns the handler with the given fully qualified class
// path. Used by the configuration parser to map existing queues back to
// catalog entries.
func (c *Catalog) LookupByClass(classPath string) (Handler, bool) {
	h, ok := c.byClass[classPath]
	return h, ok
}

// Applicable returns all handlers applicable to the given application type,
// sorted by ID.
func (c *Catalog) Applicable(t AppType) []Handler {
	var out []Handler
	for _, h := range c.ordered {
		if h.ApplicableTo(t) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RequiredFor returns the base-pattern handlers for the given application
// type, sorted by ID.
func (c *Catalog) RequiredFor(t AppType) []Handler {
	var out []Handler
	for _, h := range c.ordered {
		if h.requiredFor(t) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// All returns every handler in declaration order.
func (c *Catalog) All() []Handler {
	out := make([]Handler, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Len returns the number of handlers in the catalog.
func (c *Catalog) Len() int {
	return len(c.ordered)
}
