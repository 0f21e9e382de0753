package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/hqd/internal/catalog"
)

// Feature names recognized by the selector.
const (
	FeatureDatabase       = "database"
	FeatureAuthentication = "authentication"
	FeatureSecurity       = "security"
	FeatureSession        = "session"
	FeatureLogging        = "logging"
	FeatureHealthCheck    = "health_check"
)

// interceptorTier places interceptors after the infrastructure handlers and
// before the dispatcher when no constraint says otherwise.
const interceptorTier = 30

// Selector maps a requirement spec to a handler selection using the catalog.
// Selection is a pure function of the spec: identical input always yields an
// identical selection.
type Selector struct {
	cat *catalog.Catalog
}

// NewSelector creates a selector over the given catalog.
func NewSelector(cat *catalog.Catalog) *Selector {
	return &Selector{cat: cat}
}

// Select computes the handler selection for the spec.
//
// The base pattern for the application type is unioned with the handlers
// implied by enabled features. A feature handler that is not applicable to
// the application type is skipped, never an error. Fails with
// MissingDependencyError when an enabled feature requires another feature
// that is not enabled, and with ConflictingAlternativeError when mutually
// exclusive handlers would both be selected.
func (s *Selector) Select(spec *RequirementSpec) (*HandlerSelection, error) {
	if !spec.AppType.Valid() {
		return nil, &catalog.UnsupportedAppTypeError{Type: string(spec.AppType)}
	}

	picked := make(map[string]SelectedHandler)
	add := func(id string, props map[string]string) error {
		h, err := s.cat.Lookup(id)
		if err != nil {
			return err
		}
		if !h.ApplicableTo(spec.AppType) {
			return nil
		}
		sel := picked[id]
		sel.Handler = h
		for k, v := range props {
			if sel.Properties == nil {
				sel.Properties = make(map[string]string)
			}
			sel.Properties[k] = v
		}
		picked[id] = sel
		return nil
	}

	// Base pattern for the application type.
	for _, h := range s.cat.RequiredFor(spec.AppType) {
		picked[h.ID] = SelectedHandler{Handler: h}
	}

	if err := s.applyFeatures(spec, add); err != nil {
		return nil, err
	}

	hints, err := s.applyInterceptors(spec, picked)
	if err != nil {
		return nil, err
	}

	if err := checkAlternatives(picked); err != nil {
		return nil, err
	}

	handlers := make([]SelectedHandler, 0, len(picked))
	for _, h := range picked {
		handlers = append(handlers, h)
	}
	sort.Slice(handlers, func(i, j int) bool { return handlers[i].ID < handlers[j].ID })

	return &HandlerSelection{
		AppType:  spec.AppType,
		Handlers: handlers,
		Hints:    hints,
	}, nil
}

// applyFeatures evaluates each feature flag against the catalog's
// applicability table for the declared application type.
func (s *Selector) applyFeatures(spec *RequirementSpec, add func(string, map[string]string) error) error {
	db := spec.Feature(FeatureDatabase)
	if db.Enabled {
		props := map[string]string{"connectionFactory": "connectionFactory"}
		if t := db.Attr("type"); t != "" {
			props["dbType"] = t
		}
		if err := add(catalog.HandlerDBConnection, props); err != nil {
			return err
		}
	}
	if db.Attr("transaction") == "required" {
		if !db.Enabled {
			return &MissingDependencyError{Feature: "database.transaction", Requires: "database.enabled"}
		}
		if err := add(catalog.HandlerTransaction, map[string]string{"transactionFactory": "databaseTransactionManager"}); err != nil {
			return err
		}
	}

	sess := spec.Feature(FeatureSession)
	if sess.Enabled {
		store := sess.Attr("store")
		if store == "" {
			store = "http_session"
		}
		if store == "db" && !db.Enabled {
			return &MissingDependencyError{Feature: "session.store=db", Requires: "database.enabled"}
		}
		if err := add(catalog.HandlerSessionStore, map[string]string{"storeName": store}); err != nil {
			return err
		}
	}

	sec := spec.Feature(FeatureSecurity)
	if sec.BoolAttr("csrf_protection") {
		// CSRF token verification reads and writes the session store.
		if !sess.Enabled {
			return &MissingDependencyError{Feature: "security.csrf_protection", Requires: "session.enabled"}
		}
		if err := add(catalog.HandlerCsrfVerification, nil); err != nil {
			return err
		}
	}
	if sec.BoolAttr("secure_headers") {
		if err := add(catalog.HandlerSecure, nil); err != nil {
			return err
		}
	}

	auth := spec.Feature(FeatureAuthentication)
	if auth.Enabled || auth.BoolAttr("login_check") {
		mechanism := auth.Attr("type")
		if mechanism == "" {
			mechanism = "session"
		}
		switch mechanism {
		case "session":
			if err := add(catalog.HandlerSessionAuth, nil); err != nil {
				return err
			}
		case "token":
			if err := add(catalog.HandlerTokenAuth, nil); err != nil {
				return err
			}
		default:
			return &MissingDependencyError{
				Feature:  "authentication.type=" + mechanism,
				Requires: `a supported mechanism ("session" or "token")`,
			}
		}
	}

	logging := spec.Feature(FeatureLogging)
	if logging.BoolAttr("access_log") {
		if err := add(catalog.HandlerHTTPAccessLog, nil); err != nil {
			return err
		}
	}
	if logging.BoolAttr("sql_log") {
		if !db.Enabled {
			return &MissingDependencyError{Feature: "logging.sql_log", Requires: "database.enabled"}
		}
		if err := add(catalog.HandlerDBConnection, map[string]string{"sqlLogEnabled": "true"}); err != nil {
			return err
		}
	}

	if spec.Feature(FeatureHealthCheck).Enabled {
		if err := add(catalog.HandlerHealthCheck, nil); err != nil {
			return err
		}
	}

	return nil
}

// applyInterceptors folds user-declared interceptors into the selection and
// collects their explicit order hints. A name matching a catalog id forces
// that handler into the selection; anything else becomes a custom handler in
// the interceptor group.
func (s *Selector) applyInterceptors(spec *RequirementSpec, picked map[string]SelectedHandler) (map[string]int, error) {
	if len(spec.Interceptors) == 0 {
		return nil, nil
	}

	hints := make(map[string]int)
	for _, ic := range spec.Interceptors {
		if ic.Name == "" {
			return nil, fmt.Errorf("interceptor with empty name")
		}

		if h, err := s.cat.Lookup(ic.Name); err == nil {
			if h.ApplicableTo(spec.AppType) {
				sel := picked[h.ID]
				sel.Handler = h
				picked[h.ID] = sel
			}
		} else {
			picked[ic.Name] = SelectedHandler{Handler: customInterceptor(ic)}
		}

		if ic.Order != nil {
			hints[ic.Name] = *ic.Order
		}
	}
	if len(hints) == 0 {
		return nil, nil
	}
	return hints, nil
}

// customInterceptor synthesizes a handler for an interceptor not present in
// the catalog.
func customInterceptor(ic Interceptor) catalog.Handler {
	class := ic.Class
	if class == "" {
		class = "custom.handler." + ic.Name
	}
	name := class
	if i := strings.LastIndex(class, "."); i >= 0 {
		name = class[i+1:]
	}
	return catalog.Handler{
		ID:          ic.Name,
		Name:        name,
		ClassPath:   class,
		Category:    catalog.CategoryInterceptor,
		AppTypes:    catalog.AppTypes,
		Tier:        interceptorTier,
		Description: ic.Description,
	}
}

// checkAlternatives fails if any two selected handlers are declared mutually
// exclusive. Pairs are scanned in sorted id order so the reported pair is
// deterministic.
func checkAlternatives(picked map[string]SelectedHandler) error {
	ids := make([]string, 0, len(picked))
	for id := range picked {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		for _, alt := range picked[id].Alternatives {
			if _, ok := picked[alt]; !ok {
				continue
			}
			a, b := id, alt
			if b < a {
				a, b = b, a
			}
			return &ConflictingAlternativeError{HandlerA: a, HandlerB: b}
		}
	}
	return nil
}
