package console

import (
	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/feed"
)

// A Snapshot is a console session's local view of the account list,
// newest registration first.
//
// Snapshots are immutable values. ApplyEvent and ApplyRefresh return the
// next Snapshot rather than mutating in place, which keeps reconciliation
// deterministic and testable away from any transport.
type Snapshot struct {
	Accounts []lifeline.Account
}

// Account fetches the account for userID out of the Snapshot, nil when absent.
func (s Snapshot) Account(userID string) *lifeline.Account {
	for i := range s.Accounts {
		if s.Accounts[i].UserID == userID {
			return &s.Accounts[i]
		}
	}

	return nil
}

// ApplyEvent patches the Snapshot with a single change-feed event.
//
// Inserts prepend, updates replace the whole record by userID, deletes
// remove it. An update for an account the Snapshot has never seen is
// treated as an insert, since a missed earlier event is the likeliest cause.
func ApplyEvent(s Snapshot, ev feed.Event) Snapshot {
	switch ev.Op {
	case feed.OpDelete:
		next := make([]lifeline.Account, 0, len(s.Accounts))
		for _, acct := range s.Accounts {
			if acct.UserID != ev.Account.UserID {
				next = append(next, acct)
			}
		}

		return Snapshot{Accounts: next}
	case feed.OpInsert, feed.OpUpdate:
		next := make([]lifeline.Account, len(s.Accounts))
		copy(next, s.Accounts)
		for i := range next {
			if next[i].UserID == ev.Account.UserID {
				next[i] = ev.Account
				return Snapshot{Accounts: next}
			}
		}

		return Snapshot{Accounts: append([]lifeline.Account{ev.Account}, next...)}
	default:
		return s
	}
}

// ApplyRefresh replaces the Snapshot with a freshly fetched account list.
//
// The fetched list is trusted wholesale. Push and pull never conflict
// because both replace whole records and the list itself is the unit of
// truth, not an incremental patch.
func ApplyRefresh(_ Snapshot, accounts []lifeline.Account) Snapshot {
	next := make([]lifeline.Account, len(accounts))
	copy(next, accounts)

	return Snapshot{Accounts: next}
}
