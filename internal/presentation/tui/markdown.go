package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/report"
)

// MarkdownReport formats a run as a Markdown document: verdict, per-level
// statistics and, for an accepted input, the trace path as a table.
func MarkdownReport(rep *domain.Report) string {
	var sb strings.Builder
	res := &rep.Result

	fmt.Fprintf(&sb, "# %s on `%s`\n\n", rep.Machine, printable(rep.Input))
	fmt.Fprintf(&sb, "**%s** %s\n\n", strings.ToUpper(string(res.Verdict)), report.Summary(res))
	fmt.Fprintf(&sb, "- max depth: %d\n- configurations expanded: %d\n", res.MaxDepth, res.Expanded)
	if rep.ID != "" {
		fmt.Fprintf(&sb, "- run: `%s`\n", rep.ID)
	}

	if len(res.Levels) > 0 {
		sb.WriteString("\n## Levels\n\n")
		sb.WriteString("| depth | width | explicit rejects | implicit rejects | successors |\n")
		sb.WriteString("|---:|---:|---:|---:|---:|\n")
		for _, l := range res.Levels {
			fmt.Fprintf(&sb, "| %d | %d | %d | %d | %d |\n",
				l.Depth, l.Width, l.ExplicitRejects, l.ImplicitRejects, l.Successors)
		}
	}

	if len(res.Path) > 0 {
		sb.WriteString("\n## Trace path\n\n")
		sb.WriteString("| step | left | state | right |\n")
		sb.WriteString("|---:|---|---|---|\n")
		for i, c := range res.Path {
			fmt.Fprintf(&sb, "| %d | %s | **%s** | %s |\n",
				i, cell(c.Left.String()), c.State, cell(c.Right.String()))
		}
	}
	return sb.String()
}

func printable(s string) string {
	if s == "" {
		return "ε"
	}
	return s
}

// cell escapes text for a Markdown table cell.
func cell(s string) string {
	if s == "" {
		return " "
	}
	return "`" + strings.ReplaceAll(s, "|", "\\|") + "`"
}
