// Package render turns engine results into their external representations:
// Nablarch component-configuration XML, a markdown rationale report, and the
// plain-text validation report. Rendering is deterministic; the same input
// always yields byte-identical output.
package render
