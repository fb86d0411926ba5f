package lifeline

import (
	"time"

	"github.com/google/uuid"
)

// A NotificationKind classifies the change-feed event behind a Notification.
type NotificationKind string

const (
	NotificationNewAccount     NotificationKind = "newAccount"
	NotificationAccountUpdated NotificationKind = "accountUpdated"
)

func (nk NotificationKind) String() string { return string(nk) }

func (nk NotificationKind) Valid() error {
	switch nk {
	case NotificationNewAccount, NotificationAccountUpdated:
		return nil
	default:
		return ErrNotValid
	}
}

// A Notification is an ephemeral, session-scoped message surfaced to an
// administrator when the change feed reports account activity.
//
// Notifications are never persisted. They live in an operator console's
// queue until dismissed or truncated.
type Notification struct {
	ID        string           `json:"id"`
	Message   string           `json:"message"`
	Kind      NotificationKind `json:"type"`
	Timestamp time.Time        `json:"timestamp"`

	// Account snapshots the record that triggered the Notification, if known.
	Account *Account `json:"account,omitempty"`
}

// NewNotification constructs a Notification for the given kind,
// stamping it with a fresh id and at as its timestamp.
func NewNotification(kind NotificationKind, msg string, at time.Time, acct *Account) Notification {
	return Notification{
		ID:        uuid.NewString(),
		Message:   msg,
		Kind:      kind,
		Timestamp: at,
		Account:   acct,
	}
}
