package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/ports"
)

// Records renders a result in output order: header, summary and, for an
// accepted input, the trace path.
func Records(machine, input string, res *domain.Result) []domain.Record {
	base := domain.Record{Machine: machine, Input: input}

	header := base
	header.Kind = domain.RecordHeader
	header.Text = fmt.Sprintf("Tracing NTM: %s on input '%s'", machine, input)

	summary := base
	summary.Kind = domain.RecordSummary
	summary.Verdict = res.Verdict
	summary.Text = Summary(res)

	out := []domain.Record{header, summary}
	if res.Verdict != domain.VerdictAccepted {
		return out
	}

	pathHead := base
	pathHead.Kind = domain.RecordPathHead
	pathHead.Text = "\nTrace path:"
	out = append(out, pathHead)

	for i, c := range res.Path {
		step := base
		step.Kind = domain.RecordStep
		step.Step = i
		step.Left = c.Left.String()
		step.State = c.State
		step.Right = c.Right.String()
		step.Text = fmt.Sprintf("Step %d:  %s [%s] %s", i, step.Left, step.State, step.Right)
		out = append(out, step)
	}
	return out
}

// Summary is the one-line verdict.
func Summary(res *domain.Result) string {
	switch res.Verdict {
	case domain.VerdictAccepted:
		return fmt.Sprintf("String accepted in %d steps.", res.Depth)
	case domain.VerdictRejected:
		return fmt.Sprintf("String rejected in %d steps.", res.Depth)
	default:
		return fmt.Sprintf("Execution stopped after %d steps.", res.MaxDepth)
	}
}

// Emit delivers every record to sink in order. A failing record does not
// stop the rest; the joined error is returned.
func Emit(ctx context.Context, sink ports.TraceSink, records []domain.Record) error {
	var errs []error
	for _, rec := range records {
		if err := sink.Emit(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
