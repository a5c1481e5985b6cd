package application

import (
	"sync"
	"time"

	"github.com/ericfisherdev/prmirror/internal/domain/model"
)

// SyncPhase names one step of a scope's fetch-reconcile-persist cycle.
type SyncPhase string

const (
	PhaseStarted   SyncPhase = "started"
	PhaseFetched   SyncPhase = "fetched"
	PhasePersisted SyncPhase = "persisted"
	PhaseFailed    SyncPhase = "failed"
	PhaseCompleted SyncPhase = "completed"
)

// ProgressEvent is a fire-and-forget notification about sync progress. It is
// not part of any operation's synchronous result.
type ProgressEvent struct {
	Scope model.Scope
	Phase SyncPhase
	Count int // Entities fetched or persisted, depending on phase.
	Err   error
	At    time.Time
}

// progressHub fans progress events out to registered subscribers. Delivery
// is best-effort: a subscriber whose channel buffer is full misses events
// rather than blocking the sync engine.
type progressHub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ProgressEvent
}

const progressBuffer = 64

// Subscribe registers a new progress listener. The returned cancel func
// unregisters it and closes the channel.
func (h *progressHub) Subscribe() (<-chan ProgressEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]chan ProgressEvent)
	}

	id := h.nextID
	h.nextID++
	ch := make(chan ProgressEvent, progressBuffer)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

func (h *progressHub) publish(ev ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
