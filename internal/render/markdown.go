package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/roach88/hqd/internal/engine"
)

// WriteMarkdown writes the rationale report: the final queue, and for each
// handler the constraints that justified its position. Handlers touched by no
// constraint are placed by catalog tier alone and say so.
func WriteMarkdown(w io.Writer, res *engine.GenerationResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Handler Queue: %s\n\n", res.Project)
	fmt.Fprintf(&b, "- Application type: `%s`\n", res.Queue.AppType)
	fmt.Fprintf(&b, "- Handlers: %d\n", len(res.Queue.Entries))
	fmt.Fprintf(&b, "- Fingerprint: `%s`\n\n", res.Fingerprint)

	b.WriteString("## Queue\n\n")
	b.WriteString("| # | Handler | Class |\n")
	b.WriteString("|---|---------|-------|\n")
	row := 1
	for _, entry := range res.Queue.Entries {
		fmt.Fprintf(&b, "| %d | %s | `%s` |\n", row, entry.Handler.ID, entry.Handler.ClassPath)
		row++
		for _, n := range entry.Nested {
			fmt.Fprintf(&b, "| %d | &nbsp;&nbsp;↳ %s | `%s` |\n", row, n.ID, n.ClassPath)
			row++
		}
	}
	b.WriteString("\n## Ordering rationale\n\n")

	for i, entry := range res.Queue.Entries {
		id := entry.Handler.ID
		fmt.Fprintf(&b, "%d. **%s**", i+1, id)
		reasons := handlerReasons(res.Graph, id)
		if len(reasons) == 0 {
			b.WriteString(" (no ordering constraints; placed by catalog priority)\n")
		} else {
			b.WriteString("\n")
			for _, r := range reasons {
				fmt.Fprintf(&b, "   - %s\n", r)
			}
		}
		for _, n := range entry.Nested {
			cid := containmentRule(res.Graph, n.ID)
			fmt.Fprintf(&b, "   - contains **%s**", n.ID)
			if cid != "" {
				fmt.Fprintf(&b, " (%s)", cid)
			}
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// MarkdownString renders the rationale report to a string.
func MarkdownString(res *engine.GenerationResult) (string, error) {
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, res); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// handlerReasons collects the constraint obligations touching one handler, in
// a stable order: pins first, then edges, then explicit-order hints.
func handlerReasons(g *engine.Graph, id string) []string {
	var reasons []string

	if cid, ok := g.First[id]; ok {
		reasons = append(reasons, fmt.Sprintf("pinned to the first position (%s)", cid))
	}
	if cid, ok := g.Last[id]; ok {
		reasons = append(reasons, fmt.Sprintf("pinned to the last position (%s)", cid))
	}
	if spec, ok := g.NearTop[id]; ok {
		reasons = append(reasons, fmt.Sprintf("placed within the first %d handlers (%s)", spec.Threshold+1, spec.ConstraintID))
	}

	var edgeReasons []string
	for _, e := range g.EdgesTouching(id) {
		if e.From == id {
			edgeReasons = append(edgeReasons, fmt.Sprintf("must run before `%s` (%s)", e.To, e.ConstraintID))
		} else {
			edgeReasons = append(edgeReasons, fmt.Sprintf("must run after `%s` (%s)", e.From, e.ConstraintID))
		}
	}
	sort.Strings(edgeReasons)
	reasons = append(reasons, edgeReasons...)

	for _, grp := range g.Groups {
		if pos, ok := grp.Hints[id]; ok {
			reasons = append(reasons, fmt.Sprintf("explicit order hint %d within [%s] (%s)",
				pos, strings.Join(grp.Members, ", "), grp.ConstraintID))
		}
	}
	return reasons
}

// containmentRule returns the constraint id that nests the given member, or
// the empty string.
func containmentRule(g *engine.Graph, member string) string {
	for _, spec := range g.Contains {
		for _, m := range spec.Members {
			if m == member {
				return spec.ConstraintID
			}
		}
	}
	return ""
}
