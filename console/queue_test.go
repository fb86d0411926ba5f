package console_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/console"
)

func TestQueuePushCapsAtFive(t *testing.T) {
	// Arrange
	q := console.NewQueue()
	at := time.Now()

	// Act
	for i := 0; i < console.MaxQueued+2; i++ {
		msg := fmt.Sprintf("event %d", i)
		q.Push(lifeline.NewNotification(lifeline.NotificationAccountUpdated, msg, at, nil))
	}

	// Assert: most recent first, oldest two dropped.
	items := q.Items()
	require.Len(t, items, console.MaxQueued)
	require.Equal(t, "event 6", items[0].Message)
	require.Equal(t, "event 2", items[len(items)-1].Message)
}

func TestQueueDismiss(t *testing.T) {
	// Arrange
	q := console.NewQueue()
	n := lifeline.NewNotification(lifeline.NotificationNewAccount, "new account", time.Now(), nil)
	q.Push(n)

	// Act + Assert
	require.True(t, q.Dismiss(n.ID))
	require.Zero(t, q.Len())
	require.False(t, q.Dismiss(n.ID))
}

func TestQueueToleratesDuplicates(t *testing.T) {
	// Arrange
	q := console.NewQueue()
	at := time.Now()

	// Act: the same logical event delivered twice makes two entries.
	q.Push(lifeline.NewNotification(lifeline.NotificationNewAccount, "same", at, nil))
	q.Push(lifeline.NewNotification(lifeline.NotificationNewAccount, "same", at, nil))

	// Assert
	items := q.Items()
	require.Len(t, items, 2)
	require.NotEqual(t, items[0].ID, items[1].ID)
}

func TestQueueClear(t *testing.T) {
	// Arrange
	q := console.NewQueue()
	q.Push(lifeline.NewNotification(lifeline.NotificationNewAccount, "x", time.Now(), nil))

	// Act
	q.Clear()

	// Assert
	require.Empty(t, q.Items())
}
