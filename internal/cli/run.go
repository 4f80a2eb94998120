package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/ntmtrace/internal/presentation/tui"
	"github.com/aretw0/ntmtrace/pkg/adapters/file"
	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/ports"
	"github.com/aretw0/ntmtrace/pkg/report"
)

// RunOptions selects what `ntmtrace run` traces and where the output goes.
type RunOptions struct {
	Machine string
	Inputs  []string

	// MaxDepth overrides max_depth from the config when not nil.
	MaxDepth *int
	JSON     bool
	NoFile   bool
	// OutDir overrides output_dir from the config when not empty.
	OutDir   string
	Markdown bool
}

// RunTrace traces every input in order, writing each trace to stdout and,
// unless disabled, to its output file. A failing input does not stop the
// remaining ones; the joined error is returned.
func RunTrace(ctx context.Context, app *App, opts RunOptions, stdout io.Writer) error {
	maxDepth := app.Config.MaxDepth
	if opts.MaxDepth != nil {
		maxDepth = *opts.MaxDepth
	}
	outDir := app.Config.OutputDir
	if opts.OutDir != "" {
		outDir = opts.OutDir
	}
	writeFiles := app.Config.WriteFiles && !opts.NoFile

	var errs []error
	for i, input := range opts.Inputs {
		if ctx.Err() != nil {
			err := interruption(ctx, len(opts.Inputs)-i)
			printSystemMessage(stdout, "Stopped before input '%s'.", input)
			errs = append(errs, err)
			break
		}
		if err := traceOne(ctx, app, opts, input, maxDepth, outDir, writeFiles, stdout); err != nil {
			app.Logger.Error("trace failed", "machine", opts.Machine, "input", input, "err", err)
			errs = append(errs, fmt.Errorf("input '%s': %w", input, err))
		}
	}
	return errors.Join(errs...)
}

func traceOne(ctx context.Context, app *App, opts RunOptions, input string, maxDepth int, outDir string, writeFiles bool, stdout io.Writer) error {
	rep, err := app.Tracer.Trace(ctx, opts.Machine, input, maxDepth)
	if err != nil {
		return err
	}

	var sinks []ports.TraceSink
	if opts.JSON {
		sinks = append(sinks, report.NewJSONSink(stdout))
	} else {
		sinks = append(sinks, report.NewTextSink(stdout))
	}

	var fileSink *file.Sink
	if writeFiles {
		// Files carry the declared machine name, not the loader key.
		m, err := app.Tracer.Machine(opts.Machine)
		if err != nil {
			return err
		}
		fileSink, err = file.NewSink(outDir, m.Name, input)
		if err != nil {
			return err
		}
		sinks = append(sinks, fileSink)
	}

	emitErr := app.Tracer.Emit(ctx, rep, sinks...)
	if fileSink != nil {
		if err := fileSink.Close(); err != nil {
			emitErr = errors.Join(emitErr, err)
		}
		app.Logger.Debug("trace written", "path", fileSink.Path())
	}
	if emitErr != nil {
		return emitErr
	}

	if opts.Markdown && !opts.JSON {
		return printMarkdown(rep, stdout)
	}
	if !opts.JSON && len(opts.Inputs) > 1 {
		fmt.Fprintln(stdout)
	}
	return nil
}

func printMarkdown(rep *domain.Report, stdout io.Writer) error {
	render := tui.NewRenderer()
	out, err := render(tui.MarkdownReport(rep))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(stdout, out)
	return err
}

// ListMachines prints every machine name with its validation status.
func ListMachines(app *App, stdout io.Writer) error {
	names, err := app.Tracer.Machines()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		printSystemMessage(stdout, "No machines found in '%s'.", app.Tracer.Name)
		return nil
	}
	for _, name := range names {
		m, err := app.Tracer.Machine(name)
		switch {
		case err != nil:
			fmt.Fprintf(stdout, "%s\tinvalid: %v\n", name, err)
		case m.Description != "":
			fmt.Fprintf(stdout, "%s\t%s\n", name, m.Description)
		default:
			fmt.Fprintln(stdout, name)
		}
	}
	return nil
}

// Validate checks one machine, or every machine when name is empty.
func Validate(app *App, name string, stdout io.Writer) error {
	if name != "" {
		if _, err := app.Tracer.Machine(name); err != nil {
			return err
		}
		printSystemMessage(stdout, "Machine '%s' is valid.", name)
		return nil
	}

	problems, err := app.Tracer.Validate()
	if err != nil {
		return err
	}
	names, err := app.Tracer.Machines()
	if err != nil {
		return err
	}

	var errs []error
	for _, n := range names {
		if err, ok := problems[n]; ok {
			fmt.Fprintf(stdout, "FAIL %s: %v\n", n, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(stdout, "ok   %s\n", n)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d machines are invalid", len(errs), len(names))
	}
	return nil
}
