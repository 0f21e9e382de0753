package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/hqd/internal/catalog"
	"github.com/roach88/hqd/internal/engine"
)

// xmlNamespace is the Nablarch component-configuration schema namespace.
const xmlNamespace = "http://tis.co.jp/nablarch/component-configuration"

// Controller component per application type. Web-family applications run
// inside a servlet container; standalone processes boot through the launcher.
var (
	controllerNames = map[catalog.AppType]string{
		catalog.AppWeb:           "webFrontController",
		catalog.AppRest:          "webFrontController",
		catalog.AppHTTPMessaging: "webFrontController",
		catalog.AppBatch:         "main",
		catalog.AppBatchResident: "main",
		catalog.AppMomMessaging:  "main",
	}
	controllerClasses = map[catalog.AppType]string{
		catalog.AppWeb:           "nablarch.fw.web.servlet.WebFrontController",
		catalog.AppRest:          "nablarch.fw.web.servlet.WebFrontController",
		catalog.AppHTTPMessaging: "nablarch.fw.web.servlet.WebFrontController",
		catalog.AppBatch:         "nablarch.fw.launcher.Main",
		catalog.AppBatchResident: "nablarch.fw.launcher.Main",
		catalog.AppMomMessaging:  "nablarch.fw.launcher.Main",
	}
)

// WriteXML writes the queue as a Nablarch component-configuration document.
// Each handler gets a description comment; derived configuration attributes
// become component properties; routing-group members render as a nested
// handlerList inside their container component.
func WriteXML(w io.Writer, q *engine.OrderedQueue) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "component-configuration"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: xmlNamespace}},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	if err := encodeComment(enc, 1, fmt.Sprintf("Handler queue for %s application", q.AppType)); err != nil {
		return err
	}

	controller := xml.StartElement{
		Name: xml.Name{Local: "component"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "name"}, Value: controllerNames[q.AppType]},
			{Name: xml.Name{Local: "class"}, Value: controllerClasses[q.AppType]},
		},
	}
	if err := enc.EncodeToken(controller); err != nil {
		return err
	}

	queueProp := xml.StartElement{
		Name: xml.Name{Local: "property"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "name"}, Value: "handlerQueue"}},
	}
	if err := enc.EncodeToken(queueProp); err != nil {
		return err
	}
	list := xml.StartElement{Name: xml.Name{Local: "list"}}
	if err := enc.EncodeToken(list); err != nil {
		return err
	}

	for _, entry := range q.Entries {
		if err := encodeHandler(enc, 4, entry.Handler, entry.Nested); err != nil {
			return err
		}
	}

	for _, start := range []xml.StartElement{list, queueProp, controller, root} {
		if err := enc.EncodeToken(start.End()); err != nil {
			return err
		}
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// XMLString renders the queue to a string. Used by tests and the generate
// command.
func XMLString(q *engine.OrderedQueue) (string, error) {
	var buf bytes.Buffer
	if err := WriteXML(&buf, q); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeHandler(enc *xml.Encoder, depth int, h engine.SelectedHandler, nested []engine.SelectedHandler) error {
	if h.Description != "" {
		if err := encodeComment(enc, depth, h.Description); err != nil {
			return err
		}
	}

	comp := xml.StartElement{
		Name: xml.Name{Local: "component"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "class"}, Value: h.ClassPath}},
	}
	if err := enc.EncodeToken(comp); err != nil {
		return err
	}

	for _, key := range h.PropertyKeys() {
		prop := xml.StartElement{
			Name: xml.Name{Local: "property"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "name"}, Value: key},
				{Name: xml.Name{Local: "value"}, Value: h.Properties[key]},
			},
		}
		if err := enc.EncodeToken(prop); err != nil {
			return err
		}
		if err := enc.EncodeToken(prop.End()); err != nil {
			return err
		}
	}

	if len(nested) > 0 {
		inner := xml.StartElement{
			Name: xml.Name{Local: "property"},
			Attr: []xml.Attr{{Name: xml.Name{Local: "name"}, Value: "handlerList"}},
		}
		if err := enc.EncodeToken(inner); err != nil {
			return err
		}
		innerList := xml.StartElement{Name: xml.Name{Local: "list"}}
		if err := enc.EncodeToken(innerList); err != nil {
			return err
		}
		for _, n := range nested {
			if err := encodeHandler(enc, depth+3, n, nil); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(innerList.End()); err != nil {
			return err
		}
		if err := enc.EncodeToken(inner.End()); err != nil {
			return err
		}
	}

	return enc.EncodeToken(comp.End())
}

// encodeComment writes an indented comment. The token encoder emits comments
// without indentation, so the line break and padding go out as raw character
// data first.
func encodeComment(enc *xml.Encoder, depth int, text string) error {
	pad := "\n" + strings.Repeat("  ", depth)
	if err := enc.EncodeToken(xml.CharData(pad)); err != nil {
		return err
	}
	return enc.EncodeToken(xml.Comment(" " + text + " "))
}
