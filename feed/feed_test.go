package feed_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/feed"
)

func TestMemoryBrokerDeliversInOrder(t *testing.T) {
	// Arrange
	b := feed.NewMemoryBroker()
	ctx := context.Background()

	events, unsub, err := b.Subscribe(ctx)
	require.Nil(t, err)
	defer unsub()

	acct := lifeline.Account{UserID: "auth0|abc", Role: lifeline.RoleEmployee, Approval: lifeline.ApprovalPending}

	// Act
	require.Nil(t, b.Publish(ctx, feed.Event{Op: feed.OpInsert, Account: acct, At: time.Now()}))
	acct.Approval = lifeline.ApprovalApproved
	acct.Status = lifeline.StatusActive
	require.Nil(t, b.Publish(ctx, feed.Event{Op: feed.OpUpdate, Account: acct, At: time.Now()}))

	// Assert
	first := <-events
	require.Equal(t, feed.OpInsert, first.Op)
	require.Equal(t, lifeline.ApprovalPending, first.Account.Approval)

	second := <-events
	require.Equal(t, feed.OpUpdate, second.Op)
	require.Equal(t, lifeline.StatusActive, second.Account.Status)
}

func TestMemoryBrokerUnsubscribeStopsDelivery(t *testing.T) {
	// Arrange
	b := feed.NewMemoryBroker()
	ctx := context.Background()

	events, unsub, err := b.Subscribe(ctx)
	require.Nil(t, err)

	// Act
	unsub()
	unsub() // safe to call twice

	require.Nil(t, b.Publish(ctx, feed.Event{Op: feed.OpInsert}))

	// Assert: the channel is closed and drained.
	_, open := <-events
	require.False(t, open)
}

func TestMemoryBrokerDropsForStalledSubscriber(t *testing.T) {
	// Arrange: a subscriber that never drains.
	b := feed.NewMemoryBroker()
	ctx := context.Background()

	events, unsub, err := b.Subscribe(ctx)
	require.Nil(t, err)
	defer unsub()

	// Act: overflow its buffer; Publish must not block.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			_ = b.Publish(ctx, feed.Event{Op: feed.OpUpdate})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a stalled subscriber")
	}

	require.NotZero(t, len(events))
}

func TestOpValid(t *testing.T) {
	for _, op := range []feed.Op{feed.OpInsert, feed.OpUpdate, feed.OpDelete} {
		require.Nil(t, op.Valid())
	}

	require.ErrorIs(t, feed.Op("upsert").Valid(), lifeline.ErrNotValid)
}
