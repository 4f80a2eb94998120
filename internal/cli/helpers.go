package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrInterrupted reports a batch of traces stopped by a signal.
var ErrInterrupted = errors.New("interrupted")

// SignalContext is cancelled on SIGINT or SIGTERM and remembers which
// signal did it. Unlike signal.NotifyContext the signal stays readable
// after cancellation, so a batch can report what stopped it.
type SignalContext struct {
	context.Context
	cancel context.CancelFunc

	once sync.Once
	mu   sync.Mutex
	sig  os.Signal
}

// NewSignalContext starts listening for termination signals.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case s := <-ch:
			sc.mu.Lock()
			sc.sig = s
			sc.mu.Unlock()
			sc.Cancel()
		case <-ctx.Done():
		}
	}()
	return sc
}

// Cancel stops listening and cancels the context. It is safe to call twice.
func (sc *SignalContext) Cancel() {
	sc.once.Do(sc.cancel)
}

// Signal returns the signal that cancelled the context, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sig
}

// interruption builds the error returned when ctx stops a batch with
// pending inputs left.
func interruption(ctx context.Context, pending int) error {
	var sig os.Signal
	if sc, ok := ctx.(*SignalContext); ok {
		sig = sc.Signal()
	}
	if sig != nil {
		return fmt.Errorf("%w by %s with %d input(s) not traced", ErrInterrupted, sig, pending)
	}
	return fmt.Errorf("%w with %d input(s) not traced: %w", ErrInterrupted, pending, ctx.Err())
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
