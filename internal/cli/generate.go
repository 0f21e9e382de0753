package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/hqd/internal/catalog"
	"github.com/roach88/hqd/internal/engine"
	"github.com/roach88/hqd/internal/parser"
	"github.com/roach88/hqd/internal/render"
)

// ErrCodeWriteFailed reports a failure writing generated files.
const ErrCodeWriteFailed = "E007"

// Output file formats for the generate command.
var validEmitFormats = []string{"xml", "markdown", "both"}

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	OutputDir string
	Emit      string // "xml" | "markdown" | "both"
}

// GenerateResult is the success payload of the generate command.
type GenerateResult struct {
	Project     string   `json:"project"`
	AppType     string   `json:"app_type"`
	Queue       []string `json:"queue"`
	Fingerprint string   `json:"fingerprint"`
	Files       []string `json:"files"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate <requirements-file>",
		Short: "Generate a handler queue from a requirements file",
		Long: `Generate an ordered Nablarch handler queue from a YAML requirements file.

Selects the handlers implied by the application type and enabled features,
orders them under the published constraint rules, and writes the component
configuration XML and a markdown rationale report.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true, // the formatter renders errors
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(rootOpts, opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.OutputDir, "output", "o", ".", "directory for generated files")
	cmd.Flags().StringVarP(&opts.Emit, "emit", "f", "both", "files to generate (xml|markdown|both)")

	return cmd
}

func runGenerate(rootOpts *RootOptions, opts *GenerateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
		TraceID:   NewTraceID(),
	}

	if !isValidEmit(opts.Emit) {
		_ = formatter.Error(parser.ErrCodeGeneric,
			fmt.Sprintf("invalid emit format %q: must be one of %v", opts.Emit, validEmitFormats), nil)
		return NewExitError(ExitParseError, "invalid emit format")
	}

	spec, err := parser.LoadRequirements(path)
	if err != nil {
		return parseFailure(formatter, err)
	}
	formatter.VerboseLog("Parsed requirements for %q (%s)", spec.Name, spec.AppType)

	res, err := engine.Generate(spec, catalog.Default(), catalog.Rules())
	if err != nil {
		code := engine.ErrorCode(err)
		if code == "" {
			code = parser.ErrCodeGeneric
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitEngineError, "generation failed", err)
	}
	formatter.VerboseLog("Ordered %d handlers, fingerprint %s", len(res.Queue.Entries), res.Fingerprint)

	files, err := writeOutputs(opts, res)
	if err != nil {
		_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
		return WrapExitError(ExitWriteError, "writing output files", err)
	}

	result := GenerateResult{
		Project:     res.Project,
		AppType:     string(res.Queue.AppType),
		Queue:       res.Queue.IDs(),
		Fingerprint: res.Fingerprint,
		Files:       files,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Generated handler queue for %q (%s)\n", result.Project, result.AppType)
	for i, id := range result.Queue {
		fmt.Fprintf(formatter.Writer, "  %2d. %s\n", i+1, id)
	}
	fmt.Fprintf(formatter.Writer, "Fingerprint: %s\n", result.Fingerprint)
	for _, f := range result.Files {
		fmt.Fprintf(formatter.Writer, "Wrote %s\n", f)
	}
	return nil
}

// writeOutputs writes the selected artifacts and returns their paths.
func writeOutputs(opts *GenerateOptions, res *engine.GenerationResult) ([]string, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var files []string
	if opts.Emit == "xml" || opts.Emit == "both" {
		path := filepath.Join(opts.OutputDir, "handler-queue.xml")
		content, err := render.XMLString(res.Queue)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	if opts.Emit == "markdown" || opts.Emit == "both" {
		path := filepath.Join(opts.OutputDir, "handler-queue.md")
		content, err := render.MarkdownString(res)
		if err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, err
		}
		files = append(files, path)
	}
	return files, nil
}

// parseFailure renders a parse error and maps it to the parse exit code.
func parseFailure(formatter *OutputFormatter, err error) error {
	var parseErr *parser.ParseError
	if errors.As(err, &parseErr) {
		details := map[string]interface{}{}
		if parseErr.File != "" {
			details["file"] = parseErr.File
		}
		if parseErr.Line > 0 {
			details["line"] = parseErr.Line
		}
		_ = formatter.Error(parseErr.Code, parseErr.Message, details)
	} else {
		_ = formatter.Error(parser.ErrCodeGeneric, err.Error(), nil)
	}
	return WrapExitError(ExitParseError, "parsing input", err)
}

func isValidEmit(emit string) bool {
	for _, f := range validEmitFormats {
		if f == emit {
			return true
		}
	}
	return false
}
