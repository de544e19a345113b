package notify

import (
	"context"
	"sync"

	"github.com/tonica-app/tonica/internal/logger"
)

// Hub decouples event producers from slow consumers: Publish queues the
// event on a bounded channel and dispatch workers fan it out to stream
// subscribers. A full stream buffer drops the event for that subscriber
// only, since a stalled stream can re-read current progress when it
// catches up.
type Hub struct {
	events  chan Event
	wg      sync.WaitGroup
	workers int
	cancel  context.CancelFunc
	log     *logger.Logger

	mu      sync.RWMutex
	seq     int
	streams map[int]chan Event
}

func NewHub(workers, queueSize int) *Hub {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	log := logger.Default().WithPrefix("notify-hub")
	log.Debug("creating hub with %d workers and queue size %d", workers, queueSize)
	return &Hub{
		events:  make(chan Event, queueSize),
		workers: workers,
		log:     log,
		streams: make(map[int]chan Event),
	}
}

func (h *Hub) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.log.Info("starting hub with %d workers", h.workers)

	for i := 0; i < h.workers; i++ {
		h.wg.Add(1)
		go func(id int) {
			defer h.wg.Done()
			workerLog := h.log.WithField("worker_id", id)
			workerLog.Debug("worker started")

			for {
				select {
				case <-ctx.Done():
					workerLog.Debug("worker shutting down (context cancelled)")
					return
				case event, ok := <-h.events:
					if !ok {
						workerLog.Debug("worker shutting down (event channel closed)")
						return
					}
					h.dispatch(workerLog, event)
				}
			}
		}(i + 1)
	}
}

func (h *Hub) dispatch(log *logger.Logger, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, stream := range h.streams {
		select {
		case stream <- event:
		default:
			log.Debug("stream %d full, dropping event for user_id=%s", id, event.UserID)
		}
	}
}

func (h *Hub) Stop() {
	h.log.Info("stopping hub")
	if h.cancel != nil {
		h.cancel()
	}
	close(h.events)
	h.wg.Wait()
	h.log.Info("hub stopped")
}

// Publish queues the event for dispatch. It blocks when the queue is
// full rather than dropping.
func (h *Hub) Publish(event Event) {
	h.events <- event
}

// ProgressChanged implements Listener, so the hub can hang directly off
// a Broadcaster.
func (h *Hub) ProgressChanged(ctx context.Context, event Event) {
	h.Publish(event)
}

// Subscribe opens a stream of events with the given buffer. The returned
// cancel function closes the stream; callers must invoke it when done.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	stream := make(chan Event, buffer)

	h.mu.Lock()
	h.seq++
	id := h.seq
	h.streams[id] = stream
	h.mu.Unlock()

	h.log.Debug("stream %d subscribed", id)

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.streams[id]; ok {
			delete(h.streams, id)
			close(stream)
			h.log.Debug("stream %d unsubscribed", id)
		}
	}
	return stream, cancel
}

// QueueSize returns the current number of pending events.
func (h *Hub) QueueSize() int {
	return len(h.events)
}
