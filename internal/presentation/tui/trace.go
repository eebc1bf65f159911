package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/aretw0/tale/pkg/domain"
)

// Tracer prints one line per lifecycle event, indented by instance depth.
type Tracer struct {
	mu  sync.Mutex
	w   io.Writer
	out *termenv.Output
}

// NewTracer creates a tracer writing to w. Without color every line is plain text.
func NewTracer(w io.Writer, color bool) *Tracer {
	var opts []termenv.OutputOption
	if !color {
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	}
	return &Tracer{w: w, out: termenv.NewOutput(w, opts...)}
}

// Hooks returns the lifecycle hooks that feed the tracer.
func (t *Tracer) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTell: func(_ context.Context, e *domain.TellingEvent) {
			t.telling("started", e)
		},
		OnStop: func(_ context.Context, e *domain.TellingEvent) {
			t.telling("stopped", e)
		},
		OnSetup: func(_ context.Context, e *domain.InstanceEvent) {
			t.instance("+", "#22c55e", e, "")
		},
		OnTeardown: func(_ context.Context, e *domain.InstanceEvent) {
			t.instance("-", "#64748b", e, "")
		},
		OnFault: func(_ context.Context, e *domain.InstanceEvent) {
			t.instance("!", "#ef4444", e, fmt.Sprintf(" %s: %v", e.Phase, e.Err))
		},
	}
}

func (t *Tracer) telling(what string, e *domain.TellingEvent) {
	id := e.TellingID
	if len(id) > 8 {
		id = id[:8]
	}
	line := fmt.Sprintf("== telling %s %s (%s)", id, what, e.RootType)
	t.print(t.out.String(line).Bold().String())
}

func (t *Tracer) instance(mark, color string, e *domain.InstanceEvent, suffix string) {
	label := e.NodeType
	if e.NodeName != "" {
		label += " @" + e.NodeName
	}
	styled := t.out.String(mark + " " + label).Foreground(t.out.Color(color))
	t.print(strings.Repeat("  ", e.Depth) + styled.String() + suffix)
}

func (t *Tracer) print(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, line)
}
