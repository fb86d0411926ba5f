package console_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/console"
	"github.com/agencydesk/lifeline/feed"
)

type stubLister struct {
	mu       sync.Mutex
	accounts []lifeline.Account
	calls    int
}

func (s *stubLister) ListAccounts(_ context.Context) ([]lifeline.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	out := make([]lifeline.Account, len(s.accounts))
	copy(out, s.accounts)

	return out, nil
}

func (s *stubLister) set(accounts []lifeline.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts = accounts
}

func (s *stubLister) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

func TestNewRequiresListerAndBroker(t *testing.T) {
	// Act
	_, err := console.New()

	// Assert
	require.ErrorIs(t, err, lifeline.ErrBadConfig)

	// Act
	_, err = console.New(console.WithAccounts(&stubLister{}))

	// Assert
	require.ErrorIs(t, err, lifeline.ErrBadConfig)

	// Act
	c, err := console.New(console.WithAccounts(&stubLister{}), console.WithBroker(feed.NewMemoryBroker()))

	// Assert
	require.Nil(t, err)
	require.NotNil(t, c)
}

func TestWatchAppliesPushedEvents(t *testing.T) {
	// Arrange
	lister := &stubLister{}
	broker := feed.NewMemoryBroker()
	c, err := console.New(
		console.WithAccounts(lister),
		console.WithBroker(broker),
		console.WithRefreshInterval(time.Hour),
	)
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Watch(ctx) }()

	// Wait for the initial load before publishing.
	require.Eventually(t, func() bool { return lister.callCount() > 0 }, time.Second, 5*time.Millisecond)

	// Act
	registered := lifeline.Account{UserID: "auth0|new", Approval: lifeline.ApprovalPending, Role: lifeline.RoleEmployee}
	require.Nil(t, broker.Publish(ctx, feed.Event{Op: feed.OpInsert, Account: registered, At: time.Now()}))

	// Assert
	require.Eventually(t, func() bool {
		return c.Snapshot().Account("auth0|new") != nil
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, 1, c.Queue().Len())
	require.Equal(t, lifeline.NotificationNewAccount, c.Queue().Items()[0].Kind)
	require.True(t, c.Highlights().Active("auth0|new"))

	// Act
	cancel()

	// Assert
	require.Nil(t, <-done)
}

func TestWatchRefreshBackstop(t *testing.T) {
	// Arrange
	lister := &stubLister{}
	broker := feed.NewMemoryBroker()
	c, err := console.New(
		console.WithAccounts(lister),
		console.WithBroker(broker),
		console.WithRefreshInterval(10*time.Millisecond),
	)
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = c.Watch(ctx) }()
	require.Eventually(t, func() bool { return lister.callCount() > 0 }, time.Second, 5*time.Millisecond)

	// Act: the store changes without any feed delivery.
	lister.set([]lifeline.Account{{UserID: "auth0|missed"}})

	// Assert: the periodic refresh picks it up anyway.
	require.Eventually(t, func() bool {
		return c.Snapshot().Account("auth0|missed") != nil
	}, time.Second, 5*time.Millisecond)
}

func TestWatchNavigatesWatchedAccount(t *testing.T) {
	// Arrange
	pending := lifeline.Account{UserID: "auth0|me", Approval: lifeline.ApprovalPending, Role: lifeline.RoleEmployee}
	lister := &stubLister{accounts: []lifeline.Account{pending}}
	broker := feed.NewMemoryBroker()

	var mu sync.Mutex
	var visited []lifeline.Destination
	c, err := console.New(
		console.WithAccounts(lister),
		console.WithBroker(broker),
		console.WithRefreshInterval(time.Hour),
		console.WithAccount("auth0|me"),
		console.WithNavigator(func(d lifeline.Destination) {
			mu.Lock()
			defer mu.Unlock()
			visited = append(visited, d)
		}),
	)
	require.Nil(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = c.Watch(ctx) }()

	// Assert: the initial load resolves the pending screen.
	require.Eventually(t, func() bool {
		return c.Destination() == lifeline.DestApprovalPending
	}, time.Second, 5*time.Millisecond)

	// Act: an admin approves the watched account.
	approved := pending
	approved.Approval = lifeline.ApprovalApproved
	approved.Status = lifeline.StatusActive
	approved.EmployeeID = "EMP-1"
	require.Nil(t, broker.Publish(ctx, feed.Event{Op: feed.OpUpdate, Account: approved, At: time.Now()}))

	// Assert
	require.Eventually(t, func() bool {
		return c.Destination() == lifeline.DestDashboard
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []lifeline.Destination{lifeline.DestApprovalPending, lifeline.DestDashboard}, visited)
}
