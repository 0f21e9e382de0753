// Package parser converts external input into engine types: YAML
// requirements descriptions into RequirementSpec values, and existing
// component-configuration XML files into queue documents for validation.
//
// Requirements documents are checked twice: structurally against an embedded
// CUE schema (unknown fields, enum ranges, required fields), then decoded
// with yaml.v3. Both parsers are pure: bytes in, value or typed error out.
package parser
