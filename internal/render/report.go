package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/hqd/internal/catalog"
	"github.com/roach88/hqd/internal/engine"
)

// WriteReport writes the human-readable validation report. Critical
// violations come before warnings; the verdict line is last so it is the
// first thing visible at the bottom of a terminal.
func WriteReport(w io.Writer, r *engine.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Validation report (%s application, %d handlers)\n", r.AppType, len(r.Queue))
	fmt.Fprintf(&b, "Queue: %s\n", strings.Join(r.Queue, " -> "))

	if len(r.UnknownHandlers) > 0 {
		fmt.Fprintf(&b, "\nUnknown handlers (not checked against ordering rules):\n")
		for _, id := range r.UnknownHandlers {
			fmt.Fprintf(&b, "  W201 %s\n", id)
		}
	}

	if len(r.Violations) > 0 {
		b.WriteString("\nViolations:\n")
		for _, v := range r.Violations {
			if v.Severity == catalog.SeverityCritical {
				fmt.Fprintf(&b, "  CRITICAL %s: %s\n", v.ConstraintID, v.Message)
			}
		}
		for _, v := range r.Violations {
			if v.Severity != catalog.SeverityCritical {
				fmt.Fprintf(&b, "  WARNING  %s: %s\n", v.ConstraintID, v.Message)
			}
		}
	}

	if len(r.Satisfied) > 0 {
		fmt.Fprintf(&b, "\nSatisfied: %s\n", strings.Join(r.Satisfied, ", "))
	}

	b.WriteString("\n")
	if r.HasCritical() {
		fmt.Fprintf(&b, "Result: FAIL (%d critical, %d warnings)\n", r.CriticalCount(), r.WarningCount())
	} else if r.WarningCount() > 0 || len(r.UnknownHandlers) > 0 {
		fmt.Fprintf(&b, "Result: PASS with %d warnings\n", r.WarningCount()+len(r.UnknownHandlers))
	} else {
		b.WriteString("Result: PASS\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// ReportString renders the validation report to a string.
func ReportString(r *engine.Report) (string, error) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
