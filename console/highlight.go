package console

import (
	"sync"
	"time"
)

// DefaultHighlightTTL is how long a newly registered account stays
// highlighted in the console's account list.
const DefaultHighlightTTL = 10 * time.Second

// Highlights tracks which accounts are temporarily marked as new.
//
// Each mark carries its own deadline against the injected clock, so a
// refresh cycle landing mid-highlight never cuts a highlight short.
type Highlights struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time

	deadlines map[string]time.Time
}

// NewHighlights constructs a Highlights set expiring marks after ttl on the
// given clock.
func NewHighlights(ttl time.Duration, now func() time.Time) *Highlights {
	if ttl <= 0 {
		ttl = DefaultHighlightTTL
	}
	if now == nil {
		now = time.Now
	}

	return &Highlights{ttl: ttl, now: now, deadlines: make(map[string]time.Time)}
}

// Mark highlights userID, restarting its deadline if already marked.
func (h *Highlights) Mark(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.deadlines[userID] = h.now().Add(h.ttl)
}

// Active asserts whether userID is currently highlighted.
func (h *Highlights) Active(userID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	deadline, ok := h.deadlines[userID]
	if !ok {
		return false
	}

	if !h.now().Before(deadline) {
		delete(h.deadlines, userID)
		return false
	}

	return true
}

// ActiveIDs retrieves every currently highlighted userID, pruning expired
// marks as it goes.
func (h *Highlights) ActiveIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	ids := make([]string, 0, len(h.deadlines))
	for userID, deadline := range h.deadlines {
		if now.Before(deadline) {
			ids = append(ids, userID)
			continue
		}

		delete(h.deadlines, userID)
	}

	return ids
}
