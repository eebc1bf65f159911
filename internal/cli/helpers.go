package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/tale/internal/logging"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sc.sigCh:
			sc.mu.Lock()
			sc.sigVal = sig
			sc.mu.Unlock()
			sc.Cancel()
		case <-sc.Context.Done():
			// Context cancelled elsewhere
		}
		sc.stop.Do(func() {
			signal.Stop(sc.sigCh)
		})
	}()
	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// signalOf returns the signal that cancelled ctx when ctx records one.
func signalOf(ctx context.Context) os.Signal {
	if sc, ok := ctx.(interface{ Signal() os.Signal }); ok {
		return sc.Signal()
	}
	return nil
}

// stopVerb names how a cancelled run ended. SIGINT, or a cancellation without
// a signal, interrupts it; any other signal terminates it.
func stopVerb(sig os.Signal) string {
	if sig == nil || sig == os.Interrupt {
		return "Interrupted"
	}
	return "Terminated"
}

// createLogger configures the application logger on w.
// Faults and warnings are always shown; debug adds the lifecycle chatter.
func createLogger(w io.Writer, debug bool) *slog.Logger {
	if w == nil {
		return logging.NewNop()
	}
	if debug {
		return logging.NewWriter(w, slog.LevelDebug, false)
	}
	return logging.NewWriter(w, slog.LevelWarn, false)
}

// parseScope decodes the --scope JSON object.
func parseScope(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("error parsing --scope JSON: %w", err)
	}
	return values, nil
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}
