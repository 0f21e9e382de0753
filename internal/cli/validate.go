package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hqd/internal/catalog"
	"github.com/roach88/hqd/internal/engine"
	"github.com/roach88/hqd/internal/parser"
	"github.com/roach88/hqd/internal/render"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate an existing handler queue configuration",
		Long: `Validate the handler queue of an existing component-configuration XML file.

Every applicable ordering rule is checked; all violations are reported in one
pass. Warnings do not affect the exit code, critical violations do.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true, // the formatter renders errors
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(rootOpts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
		TraceID:   NewTraceID(),
	}

	doc, err := parser.LoadConfigXML(path)
	if err != nil {
		return parseFailure(formatter, err)
	}
	formatter.VerboseLog("Recovered %d handlers, inferred application type %s", len(doc.Entries), doc.AppType)

	report, err := engine.NewValidator(catalog.Default(), catalog.Rules()).Validate(doc)
	if err != nil {
		// Structurally malformed queues are parse-level failures, not
		// rule violations.
		code := engine.ErrorCode(err)
		if code == "" {
			code = parser.ErrCodeGeneric
		}
		_ = formatter.Error(code, err.Error(), nil)
		return WrapExitError(ExitParseError, "validating queue", err)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		if err := render.WriteReport(formatter.Writer, report); err != nil {
			return err
		}
	}

	if report.HasCritical() {
		return NewExitError(ExitCriticalViolation,
			fmt.Sprintf("validation failed with %d critical violation(s)", report.CriticalCount()))
	}
	return nil
}
