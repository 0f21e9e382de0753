package engine

import (
	"sort"
	"strconv"

	"github.com/roach88/hqd/internal/catalog"
)

// RequirementSpec is the parsed requirements description for one project.
// Produced once per request from external input; read-only thereafter.
type RequirementSpec struct {
	Name    string          `json:"name"`
	AppType catalog.AppType `json:"app_type"`

	// Features maps feature name (database, authentication, security,
	// session, logging, health_check) to its configuration.
	Features map[string]Feature `json:"features,omitempty"`

	// Interceptors lists user-declared interceptor handlers. Their relative
	// order cannot be inferred from the rule set, so each carries an explicit
	// order hint (C-10).
	Interceptors []Interceptor `json:"interceptors,omitempty"`
}

// Feature is one feature flag plus its feature-specific attributes.
type Feature struct {
	Enabled bool              `json:"enabled"`
	Attrs   map[string]string `json:"attrs,omitempty"`
}

// Attr returns the named attribute or the empty string.
func (f Feature) Attr(key string) string {
	return f.Attrs[key]
}

// BoolAttr interprets the named attribute as a boolean. Absent or
// unparseable values are false.
func (f Feature) BoolAttr(key string) bool {
	v, err := strconv.ParseBool(f.Attrs[key])
	return err == nil && v
}

// Feature returns the named feature; absent features read as disabled.
func (s *RequirementSpec) Feature(name string) Feature {
	return s.Features[name]
}

// Interceptor is a user-declared interceptor handler. Name may reference a
// catalog handler id; otherwise a custom handler is synthesized with the
// given class path.
type Interceptor struct {
	Name        string `json:"name"`
	Class       string `json:"class,omitempty"`
	Description string `json:"description,omitempty"`

	// Order is the explicit ordering hint required by C-10. Nil means the
	// user supplied none.
	Order *int `json:"order,omitempty"`
}

// SelectedHandler pairs an immutable catalog handler with the per-request
// configuration attributes the selector derived for it.
type SelectedHandler struct {
	catalog.Handler

	// Properties are rendered as component properties in the generated
	// configuration (e.g. session store name, SQL log toggle).
	Properties map[string]string `json:"properties,omitempty"`
}

// PropertyKeys returns the property names in sorted order for deterministic
// rendering.
func (h SelectedHandler) PropertyKeys() []string {
	keys := make([]string, 0, len(h.Properties))
	for k := range h.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// HandlerSelection is the set of handlers chosen for a requirement spec,
// plus any explicit ordering hints. Derived by the Selector, never
// hand-edited.
type HandlerSelection struct {
	AppType catalog.AppType `json:"app_type"`

	// Handlers is sorted by handler id. Nested routing-group members are
	// included here but excluded from the constraint graph and the top-level
	// queue.
	Handlers []SelectedHandler `json:"handlers"`

	// Hints maps handler id to its explicit order position (C-10).
	Hints map[string]int `json:"hints,omitempty"`
}

// Lookup returns the selected handler with the given id.
func (s *HandlerSelection) Lookup(id string) (SelectedHandler, bool) {
	for _, h := range s.Handlers {
		if h.ID == id {
			return h, true
		}
	}
	return SelectedHandler{}, false
}

// Contains reports whether the selection includes the given handler id.
func (s *HandlerSelection) Contains(id string) bool {
	_, ok := s.Lookup(id)
	return ok
}

// TopLevel returns the non-nested handlers, sorted by id.
func (s *HandlerSelection) TopLevel() []SelectedHandler {
	var out []SelectedHandler
	for _, h := range s.Handlers {
		if !h.Nested {
			out = append(out, h)
		}
	}
	return out
}

// NestedMembers returns the routing-group members, sorted by id.
func (s *HandlerSelection) NestedMembers() []SelectedHandler {
	var out []SelectedHandler
	for _, h := range s.Handlers {
		if h.Nested {
			out = append(out, h)
		}
	}
	return out
}

// IDs returns all selected handler ids in sorted order.
func (s *HandlerSelection) IDs() []string {
	ids := make([]string, len(s.Handlers))
	for i, h := range s.Handlers {
		ids[i] = h.ID
	}
	return ids
}

// QueueEntry is one top-level position in an ordered queue. Nested holds the
// routing-group members rendered inside this handler's inner list.
type QueueEntry struct {
	Handler SelectedHandler   `json:"handler"`
	Nested  []SelectedHandler `json:"nested,omitempty"`
}

// OrderedQueue is the final ordered handler sequence for one application.
// Every selected top-level handler appears exactly once.
type OrderedQueue struct {
	AppType catalog.AppType `json:"app_type"`
	Entries []QueueEntry    `json:"entries"`
}

// IDs returns the top-level handler ids in queue order.
func (q *OrderedQueue) IDs() []string {
	ids := make([]string, len(q.Entries))
	for i, e := range q.Entries {
		ids[i] = e.Handler.ID
	}
	return ids
}

// Index returns the position of the given top-level handler id, or -1.
func (q *OrderedQueue) Index(id string) int {
	for i, e := range q.Entries {
		if e.Handler.ID == id {
			return i
		}
	}
	return -1
}
