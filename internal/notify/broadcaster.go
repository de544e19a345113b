package notify

import (
	"context"
	"sync"
)

// Broadcaster fans an event out to every subscribed listener, in the
// caller's goroutine. The progress service notifies it after each
// successful persist; listeners that must not block recording should
// hang a Hub off it instead of doing slow work inline.
type Broadcaster struct {
	mu        sync.RWMutex
	seq       int
	listeners map[int]Listener
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]Listener)}
}

// Subscribe registers the listener and returns its subscription id.
func (b *Broadcaster) Subscribe(l Listener) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	b.listeners[b.seq] = l
	return b.seq
}

// Unsubscribe removes the subscription. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.listeners, id)
}

// Notify delivers the event to every listener, synchronously and in no
// particular order. Listeners are snapshotted first, so one may
// unsubscribe itself during delivery.
func (b *Broadcaster) Notify(ctx context.Context, event Event) {
	b.mu.RLock()
	snapshot := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		snapshot = append(snapshot, l)
	}
	b.mu.RUnlock()

	for _, l := range snapshot {
		l.ProgressChanged(ctx, event)
	}
}

// Len returns the number of subscribed listeners.
func (b *Broadcaster) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
