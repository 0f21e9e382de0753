package parser

import (
	"fmt"
	"os"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/hqd/internal/catalog"
	"github.com/roach88/hqd/internal/engine"
)

// Error code constants for input parsing, unified across all CLI commands.
const (
	ErrCodeGeneric    = "E001" // Generic/unknown error
	ErrCodeReadFailed = "E002" // File read error
	ErrCodeYAMLSyntax = "E003" // YAML syntax error
	ErrCodeSchema     = "E004" // Schema violation
	ErrCodeNotFound   = "E005" // Path not found
	ErrCodeXMLParse   = "E006" // Configuration XML parse error
)

// ParseError represents an error that occurred while parsing input.
type ParseError struct {
	Code    string
	Message string
	File    string
	Line    int // 1-based; 0 when no position is available
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// rawInterceptor is one interceptor declaration as written in YAML.
type rawInterceptor struct {
	Name        string `yaml:"name"`
	Class       string `yaml:"class"`
	Description string `yaml:"description"`
	Order       *int   `yaml:"order"`
}

// rawRequirements mirrors the YAML document shape. Pointer sub-structs
// distinguish an absent section from an all-defaults one. Interceptors are
// declared under requirements; a top-level list is also honored.
type rawRequirements struct {
	Project struct {
		Name string `yaml:"name"`
		Type string `yaml:"type"`
	} `yaml:"project"`

	Requirements struct {
		Database *struct {
			Enabled     bool   `yaml:"enabled"`
			Type        string `yaml:"type"`
			Transaction string `yaml:"transaction"`
		} `yaml:"database"`
		Authentication *struct {
			Enabled    bool   `yaml:"enabled"`
			Type       string `yaml:"type"`
			LoginCheck bool   `yaml:"login_check"`
		} `yaml:"authentication"`
		Security *struct {
			CsrfProtection bool `yaml:"csrf_protection"`
			SecureHeaders  bool `yaml:"secure_headers"`
			Cors           bool `yaml:"cors"`
		} `yaml:"security"`
		Session *struct {
			Enabled bool   `yaml:"enabled"`
			Store   string `yaml:"store"`
		} `yaml:"session"`
		Logging *struct {
			AccessLog bool `yaml:"access_log"`
			SQLLog    bool `yaml:"sql_log"`
		} `yaml:"logging"`
		HealthCheck *struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"health_check"`
		Interceptors []rawInterceptor `yaml:"interceptors"`
	} `yaml:"requirements"`

	Interceptors []rawInterceptor `yaml:"interceptors"`
}

// LoadRequirements reads and parses a requirements file from disk.
func LoadRequirements(path string) (*engine.RequirementSpec, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &ParseError{Code: ErrCodeNotFound, Message: fmt.Sprintf("requirements file not found: %s", path)}
	}
	if err != nil {
		return nil, &ParseError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading requirements file: %v", err), File: path}
	}
	return ParseRequirements(path, data)
}

// ParseRequirements parses a YAML requirements document. The document is
// validated against the embedded schema first, so decoding below never sees
// out-of-range enum values or unknown fields. name is used in error positions
// only.
func ParseRequirements(name string, data []byte) (*engine.RequirementSpec, error) {
	file, err := cueyaml.Extract(name, data)
	if err != nil {
		return nil, &ParseError{
			Code:    ErrCodeYAMLSyntax,
			Message: fmt.Sprintf("invalid YAML: %v", err),
			File:    name,
			Line:    errLine(err),
		}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(requirementsSchema).LookupPath(cue.ParsePath("#Requirements"))
	if err := schema.Err(); err != nil {
		return nil, &ParseError{Code: ErrCodeGeneric, Message: fmt.Sprintf("compiling schema: %v", err)}
	}

	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return nil, &ParseError{
			Code:    ErrCodeYAMLSyntax,
			Message: fmt.Sprintf("building document: %v", err),
			File:    name,
			Line:    errLine(err),
		}
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		return nil, &ParseError{
			Code:    ErrCodeSchema,
			Message: cueerrors.Details(err, &cueerrors.Config{Cwd: ""}),
			File:    name,
			Line:    errLine(err),
		}
	}

	var raw rawRequirements
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Code: ErrCodeYAMLSyntax, Message: err.Error(), File: name}
	}
	return specFromRaw(&raw), nil
}

// specFromRaw converts the decoded document into the engine's feature map.
// Feature attributes are carried as strings; the selector interprets them.
func specFromRaw(raw *rawRequirements) *engine.RequirementSpec {
	spec := &engine.RequirementSpec{
		Name:     raw.Project.Name,
		AppType:  catalog.AppType(raw.Project.Type),
		Features: make(map[string]engine.Feature),
	}

	req := raw.Requirements
	if db := req.Database; db != nil {
		attrs := map[string]string{}
		if db.Type != "" {
			attrs["type"] = db.Type
		}
		if db.Transaction != "" {
			attrs["transaction"] = db.Transaction
		}
		spec.Features[engine.FeatureDatabase] = engine.Feature{Enabled: db.Enabled, Attrs: attrs}
	}
	if auth := req.Authentication; auth != nil {
		attrs := map[string]string{"login_check": strconv.FormatBool(auth.LoginCheck)}
		if auth.Type != "" {
			attrs["type"] = auth.Type
		}
		spec.Features[engine.FeatureAuthentication] = engine.Feature{Enabled: auth.Enabled, Attrs: attrs}
	}
	if sec := req.Security; sec != nil {
		spec.Features[engine.FeatureSecurity] = engine.Feature{
			Enabled: sec.CsrfProtection || sec.SecureHeaders || sec.Cors,
			Attrs: map[string]string{
				"csrf_protection": strconv.FormatBool(sec.CsrfProtection),
				"secure_headers":  strconv.FormatBool(sec.SecureHeaders),
				"cors":            strconv.FormatBool(sec.Cors),
			},
		}
	}
	if sess := req.Session; sess != nil {
		attrs := map[string]string{}
		if sess.Store != "" {
			attrs["store"] = sess.Store
		}
		spec.Features[engine.FeatureSession] = engine.Feature{Enabled: sess.Enabled, Attrs: attrs}
	}
	if lg := req.Logging; lg != nil {
		spec.Features[engine.FeatureLogging] = engine.Feature{
			Enabled: lg.AccessLog || lg.SQLLog,
			Attrs: map[string]string{
				"access_log": strconv.FormatBool(lg.AccessLog),
				"sql_log":    strconv.FormatBool(lg.SQLLog),
			},
		}
	}
	if hc := req.HealthCheck; hc != nil {
		spec.Features[engine.FeatureHealthCheck] = engine.Feature{Enabled: hc.Enabled}
	}

	for _, ic := range append(req.Interceptors, raw.Interceptors...) {
		spec.Interceptors = append(spec.Interceptors, engine.Interceptor{
			Name:        ic.Name,
			Class:       ic.Class,
			Description: ic.Description,
			Order:       ic.Order,
		})
	}
	return spec
}

// errLine extracts the first line number carried by a CUE error, or 0.
func errLine(err error) int {
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			return pos.Line()
		}
	}
	return 0
}
