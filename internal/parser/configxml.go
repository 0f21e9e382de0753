package parser

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/roach88/hqd/internal/catalog"
	"github.com/roach88/hqd/internal/engine"
)

// xmlConfiguration is the subset of a component-configuration file the
// validator needs: component nesting and the handlerQueue property list.
type xmlConfiguration struct {
	XMLName    xml.Name       `xml:"component-configuration"`
	Components []xmlComponent `xml:"component"`
}

type xmlComponent struct {
	Name       string        `xml:"name,attr"`
	Class      string        `xml:"class,attr"`
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string   `xml:"name,attr"`
	Value string   `xml:"value,attr"`
	List  *xmlList `xml:"list"`
}

type xmlList struct {
	Components []xmlComponent `xml:"component"`
}

// LoadConfigXML reads and parses a component-configuration file from disk.
func LoadConfigXML(path string) (*engine.QueueDocument, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &ParseError{Code: ErrCodeNotFound, Message: fmt.Sprintf("configuration file not found: %s", path)}
	}
	if err != nil {
		return nil, &ParseError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading configuration file: %v", err), File: path}
	}
	return ParseConfigXML(path, data)
}

// ParseConfigXML extracts the handler queue from a component-configuration
// document. Handlers are resolved against the catalog by class path; classes
// outside the catalog are kept with Known false so the validator can report
// them without failing. The application type is inferred from the controller
// component and the handlers present.
func ParseConfigXML(name string, data []byte) (*engine.QueueDocument, error) {
	var cfg xmlConfiguration
	if err := xml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{
			Code:    ErrCodeXMLParse,
			Message: fmt.Sprintf("invalid configuration XML: %v", err),
			File:    name,
			Line:    xmlErrLine(err),
		}
	}

	controller, queue := findHandlerQueue(cfg.Components)
	if queue == nil {
		return nil, &ParseError{
			Code:    ErrCodeXMLParse,
			Message: "no component with a handlerQueue property found",
			File:    name,
		}
	}

	cat := catalog.Default()
	doc := &engine.QueueDocument{}
	for _, comp := range queue.Components {
		item := resolveItem(cat, comp)
		for _, inner := range comp.Properties {
			if inner.Name != "handlerList" || inner.List == nil {
				continue
			}
			for _, nested := range inner.List.Components {
				item.Nested = append(item.Nested, resolveItem(cat, nested))
			}
		}
		doc.Entries = append(doc.Entries, item)
	}

	doc.AppType = inferAppType(controller, doc.Entries)
	return doc, nil
}

// findHandlerQueue locates the controller component carrying the
// handlerQueue list. Top-level components are scanned in document order.
func findHandlerQueue(components []xmlComponent) (*xmlComponent, *xmlList) {
	for i := range components {
		for _, p := range components[i].Properties {
			if p.Name == "handlerQueue" && p.List != nil {
				return &components[i], p.List
			}
		}
	}
	return nil, nil
}

// resolveItem maps a component to a queue item: catalog id when the class is
// known, otherwise the class's short name with Known false.
func resolveItem(cat *catalog.Catalog, comp xmlComponent) engine.QueueItem {
	if h, ok := cat.LookupByClass(comp.Class); ok {
		return engine.QueueItem{ID: h.ID, Known: true}
	}
	id := comp.Name
	if id == "" {
		id = comp.Class
		if i := strings.LastIndex(id, "."); i >= 0 {
			id = id[i+1:]
		}
	}
	return engine.QueueItem{ID: id}
}

// inferAppType decides the application type of a bare configuration file.
// The controller class separates the web family from standalone processes;
// signature handlers pick the member within each family.
func inferAppType(controller *xmlComponent, entries []engine.QueueItem) catalog.AppType {
	has := func(id string) bool {
		for _, e := range entries {
			if e.ID == id {
				return true
			}
			for _, n := range e.Nested {
				if n.ID == id {
					return true
				}
			}
		}
		return false
	}

	web := strings.Contains(controller.Class, "WebFrontController") ||
		controller.Name == "webFrontController"

	if web {
		switch {
		case has(catalog.HandlerRoutesMapping) || has(catalog.HandlerJaxRsResponse) || has(catalog.HandlerBodyConvert):
			return catalog.AppRest
		case has(catalog.HandlerMessagingParser):
			return catalog.AppHTTPMessaging
		default:
			return catalog.AppWeb
		}
	}

	switch {
	case has(catalog.HandlerMessagingContext):
		return catalog.AppMomMessaging
	case has(catalog.HandlerRetry):
		return catalog.AppBatchResident
	default:
		return catalog.AppBatch
	}
}

// xmlErrLine extracts the line number from an encoding/xml syntax error.
func xmlErrLine(err error) int {
	if syntax, ok := err.(*xml.SyntaxError); ok {
		return syntax.Line
	}
	return 0
}
