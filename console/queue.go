package console

import (
	"sync"

	"github.com/agencydesk/lifeline"
)

// MaxQueued is the number of notifications a Queue retains; pushing past it
// drops the oldest entry.
const MaxQueued = 5

// A Queue is a bounded, ordered list of notifications for one console
// session, most recent first.
//
// Duplicate deliveries from a redundant change feed show up as two entries.
// That is a tolerated limitation; the Queue does not deduplicate.
type Queue struct {
	mu    sync.Mutex
	items []lifeline.Notification
}

// NewQueue constructs an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push prepends n, truncating the Queue to its MaxQueued most recent entries.
func (q *Queue) Push(n lifeline.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append([]lifeline.Notification{n}, q.items...)
	if len(q.items) > MaxQueued {
		q.items = q.items[:MaxQueued]
	}
}

// Dismiss removes the notification with the given id, reporting whether one
// was found.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}

	return false
}

// Clear empties the Queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = nil
}

// Items retrieves a copy of the queued notifications, most recent first.
func (q *Queue) Items() []lifeline.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := make([]lifeline.Notification, len(q.items))
	copy(items, q.items)

	return items
}

// Len reports how many notifications are queued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}
