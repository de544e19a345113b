package notify

import (
	"context"
	"time"
)

// Event says a user's progress changed. It carries no payload beyond the
// user and the moment: observers re-read the state they care about.
type Event struct {
	UserID string    `json:"user_id"`
	At     time.Time `json:"at"`
}

// Listener receives progress-change events.
type Listener interface {
	ProgressChanged(ctx context.Context, event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ctx context.Context, event Event)

func (f ListenerFunc) ProgressChanged(ctx context.Context, event Event) {
	f(ctx, event)
}

// Notifier is the publishing side: the orchestrator hands events to a
// Notifier after each successful persist. Broadcaster implements it.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}
