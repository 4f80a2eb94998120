package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/ntmtrace/pkg/domain"
	"github.com/aretw0/ntmtrace/pkg/ports"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// TextSink writes each record's text as one line.
// When the writer is a terminal, summaries are colored by verdict and the
// state of each path step is bold.
type TextSink struct {
	mu      sync.Mutex
	w       io.Writer
	profile termenv.Profile
}

// NewTextSink wraps w. Color is only enabled for terminals.
func NewTextSink(w io.Writer) *TextSink {
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.NewOutput(f).EnvColorProfile()
	}
	return &TextSink{w: w, profile: profile}
}

// WithProfile forces a color profile (mainly for tests).
func (s *TextSink) WithProfile(p termenv.Profile) *TextSink {
	s.profile = p
	return s
}

func (s *TextSink) Emit(ctx context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := fmt.Fprintln(s.w, s.style(rec))
	return err
}

func (s *TextSink) style(rec domain.Record) string {
	if s.profile == termenv.Ascii {
		return rec.Text
	}
	switch rec.Kind {
	case domain.RecordSummary:
		color := "#22c55e"
		switch rec.Verdict {
		case domain.VerdictRejected:
			color = "#ef4444"
		case domain.VerdictUndecided:
			color = "#eab308"
		}
		return s.profile.String(rec.Text).Foreground(s.profile.Color(color)).Bold().String()
	case domain.RecordStep:
		state := s.profile.String(rec.State).Bold().String()
		return fmt.Sprintf("Step %d:  %s [%s] %s", rec.Step, rec.Left, state, rec.Right)
	case domain.RecordHeader:
		return s.profile.String(rec.Text).Foreground(s.profile.Color("#818cf8")).String()
	}
	return rec.Text
}

// JSONSink writes one JSON object per record (NDJSON).
type JSONSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONSink(w io.Writer) *JSONSink {
	return &JSONSink{enc: json.NewEncoder(w)}
}

func (s *JSONSink) Emit(ctx context.Context, rec domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(rec)
}

// Multi forwards every record to each sink, in order. All sinks see every
// record even when an earlier one fails.
type Multi []ports.TraceSink

func (m Multi) Emit(ctx context.Context, rec domain.Record) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Collector keeps records in memory.
type Collector struct {
	mu      sync.Mutex
	Records []domain.Record
}

func (c *Collector) Emit(ctx context.Context, rec domain.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Records = append(c.Records, rec)
	return nil
}
