package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTell     EventType = "tell"
	EventStop     EventType = "stop"
	EventSetup    EventType = "setup"
	EventTeardown EventType = "teardown"
	EventFault    EventType = "fault"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TellingID string    `json:"telling_id"`
}

// TellingEvent marks the start or end of a telling.
type TellingEvent struct {
	EventBase
	RootType string `json:"root_type"`
}

// InstanceEvent describes a lifecycle transition of one live instance.
type InstanceEvent struct {
	EventBase
	NodeType string `json:"node_type"`
	NodeName string `json:"node_name,omitempty"`
	Depth    int    `json:"depth"`
	Phase    Phase  `json:"phase,omitempty"`
	Err      error  `json:"-"`
}

// LifecycleHooks defines callbacks for runtime observability.
// Hooks run synchronously inside the telling and must not call back into it.
type LifecycleHooks struct {
	OnTell     func(context.Context, *TellingEvent)
	OnStop     func(context.Context, *TellingEvent)
	OnSetup    func(context.Context, *InstanceEvent)
	OnTeardown func(context.Context, *InstanceEvent)
	OnFault    func(context.Context, *InstanceEvent)
}

// MergeHooks returns hooks that invoke every non-nil hook of each set in order.
func MergeHooks(sets ...LifecycleHooks) LifecycleHooks {
	var merged LifecycleHooks
	for _, s := range sets {
		merged.OnTell = chainTelling(merged.OnTell, s.OnTell)
		merged.OnStop = chainTelling(merged.OnStop, s.OnStop)
		merged.OnSetup = chainInstance(merged.OnSetup, s.OnSetup)
		merged.OnTeardown = chainInstance(merged.OnTeardown, s.OnTeardown)
		merged.OnFault = chainInstance(merged.OnFault, s.OnFault)
	}
	return merged
}

func chainTelling(a, b func(context.Context, *TellingEvent)) func(context.Context, *TellingEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *TellingEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainInstance(a, b func(context.Context, *InstanceEvent)) func(context.Context, *InstanceEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *InstanceEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}
