package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/ntmtrace/pkg/domain"
)

// OutputName returns the trace file name for a run: <machine>_<input>.txt,
// with path separators in the input replaced by underscores.
func OutputName(machine, input string) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(input)
	return fmt.Sprintf("%s_%s.txt", machine, safe)
}

// Sink implements ports.TraceSink by appending each record's text as a
// line of the run's output file. Records are flushed as they arrive.
type Sink struct {
	f    *os.File
	path string
}

// NewSink creates (or truncates) dir/<machine>_<input>.txt.
func NewSink(dir, machine, input string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure output directory: %w", err)
	}
	path := filepath.Join(dir, OutputName(machine, input))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	return &Sink{f: f, path: path}, nil
}

// Path is the file being written.
func (s *Sink) Path() string {
	return s.path
}

// Emit writes one record.
func (s *Sink) Emit(ctx context.Context, rec domain.Record) error {
	if _, err := fmt.Fprintln(s.f, rec.Text); err != nil {
		return fmt.Errorf("failed to write trace file: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (s *Sink) Close() error {
	if err := s.f.Sync(); err != nil {
		_ = s.f.Close()
		return err
	}
	return s.f.Close()
}
