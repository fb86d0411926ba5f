package feed

import (
	"context"
	"time"

	"github.com/agencydesk/lifeline"
)

// An Op names what happened to the account row behind an Event.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

func (op Op) String() string { return string(op) }

func (op Op) Valid() error {
	switch op {
	case OpInsert, OpUpdate, OpDelete:
		return nil
	default:
		return lifeline.ErrNotValid
	}
}

// An Event is one row-level change to the account record store,
// carrying a whole-record snapshot of the row after the change.
//
// For a delete, Account snapshots the row as it was removed.
type Event struct {
	Op      Op               `json:"op"`
	Account lifeline.Account `json:"account"`
	At      time.Time        `json:"at"`
}

// An Unsubscribe tears down a subscription. It must be called when the
// session owning the subscription ends; calling it more than once is safe.
type Unsubscribe func()

// A Broker delivers account change Events to subscribers.
//
// For a single account, a subscriber observes events in the order they were
// published; ordering across different accounts is unspecified. Delivery is
// best effort - a session missing an event recovers through its periodic
// full refresh, which is why implementations may drop rather than block on a
// stalled subscriber.
type Broker interface {
	Publish(ctx context.Context, ev Event) error
	Subscribe(ctx context.Context) (<-chan Event, Unsubscribe, error)
}
