package console

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/feed"
	"github.com/agencydesk/lifeline/logger"
)

// DefaultRefreshInterval is how often a Console re-fetches the full account
// list as a backstop for missed change-feed deliveries.
const DefaultRefreshInterval = 30 * time.Second

// A Lister supplies the full account list for the periodic refresh and the
// initial load.
type Lister interface {
	ListAccounts(ctx context.Context) ([]lifeline.Account, error)
}

// A Navigator is invoked when the watched account's resolved destination
// changes and the console should move screens.
type Navigator func(lifeline.Destination)

// A Console is one administrator session's live view of the account list.
//
// It reconciles two inputs into a single Snapshot: pushed change-feed events
// and a periodic full refresh. Both run on one event loop inside Watch, so
// reconciliation never races with itself. Queue and Highlights hang off the
// Console as session-scoped, never-persisted state.
type Console struct {
	accounts Lister
	broker   feed.Broker
	l        logger.Logger
	now      func() time.Time
	navigate Navigator

	refreshEvery time.Duration
	highlightTTL time.Duration

	// watched is the viewing account's userID; routing re-resolves for it
	// after every applied event or refresh.
	watched string

	mu         sync.Mutex
	snap       Snapshot
	dest       lifeline.Destination
	queue      *Queue
	highlights *Highlights
}

// A ConsoleOptFn is a functional option configuring a Console when constructing a new one.
type ConsoleOptFn func(*Console)

// WithAccounts sets the Lister the Console loads and refreshes the account list from.
func WithAccounts(accounts Lister) ConsoleOptFn {
	return func(c *Console) { c.accounts = accounts }
}

// WithBroker sets the change-feed Broker the Console subscribes to.
func WithBroker(broker feed.Broker) ConsoleOptFn {
	return func(c *Console) { c.broker = broker }
}

// WithLogger sets the logger.Logger the Console reports soft failures through.
func WithLogger(l logger.Logger) ConsoleOptFn {
	return func(c *Console) { c.l = l }
}

// WithClock sets the clock used for notification timestamps and highlight
// deadlines. Tests freeze it.
func WithClock(now func() time.Time) ConsoleOptFn {
	return func(c *Console) { c.now = now }
}

// WithRefreshInterval overrides DefaultRefreshInterval.
func WithRefreshInterval(d time.Duration) ConsoleOptFn {
	return func(c *Console) { c.refreshEvery = d }
}

// WithHighlightTTL overrides DefaultHighlightTTL.
func WithHighlightTTL(d time.Duration) ConsoleOptFn {
	return func(c *Console) { c.highlightTTL = d }
}

// WithNavigator sets the callback invoked when the watched account's
// destination changes.
func WithNavigator(fn Navigator) ConsoleOptFn {
	return func(c *Console) { c.navigate = fn }
}

// WithAccount sets the viewing account's userID.
func WithAccount(userID string) ConsoleOptFn {
	return func(c *Console) { c.watched = userID }
}

// New constructs a Console from the given options.
//
// WithAccounts and WithBroker are required; everything else has a default.
func New(opts ...ConsoleOptFn) (*Console, error) {
	c := &Console{
		now:          time.Now,
		refreshEvery: DefaultRefreshInterval,
		highlightTTL: DefaultHighlightTTL,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.accounts == nil {
		return nil, fmt.Errorf("%w: an account Lister is required", lifeline.ErrBadConfig)
	}
	if c.broker == nil {
		return nil, fmt.Errorf("%w: a feed Broker is required", lifeline.ErrBadConfig)
	}
	if c.l == nil {
		c.l = logger.NewLogger()
	}
	if c.refreshEvery <= 0 {
		c.refreshEvery = DefaultRefreshInterval
	}

	c.queue = NewQueue()
	c.highlights = NewHighlights(c.highlightTTL, c.now)

	return c, nil
}

// Watch loads the account list, subscribes to the change feed, and runs the
// session's event loop until ctx is cancelled.
//
// Cancelling ctx tears down the subscription and the refresh ticker. Watch
// returns nil on cancellation and an error only when the initial load or
// subscription fails.
func (c *Console) Watch(ctx context.Context) error {
	if err := c.refresh(ctx); err != nil {
		return err
	}

	events, unsubscribe, err := c.broker.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("%w: failed subscribing to change feed: %s", lifeline.ErrUnexpected, err)
	}
	defer unsubscribe()

	ticker := time.NewTicker(c.refreshEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.apply(ev)
		case <-ticker.C:
			if err := c.refresh(ctx); err != nil {
				c.l.Warn("failed refreshing account list", &logger.LogContext{Error: err})
			}
		}
	}
}

// Snapshot retrieves the current local view of the account list.
func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.snap
}

// Destination retrieves the watched account's currently resolved destination.
func (c *Console) Destination() lifeline.Destination {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dest
}

// Queue retrieves the session's notification queue.
func (c *Console) Queue() *Queue {
	return c.queue
}

// Highlights retrieves the session's new-account highlight set.
func (c *Console) Highlights() *Highlights {
	return c.highlights
}

// apply patches the Snapshot with ev, queues its notification, and
// re-resolves routing for the watched account.
func (c *Console) apply(ev feed.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := cloneAccount(c.snap.Account(c.watched))
	c.snap = ApplyEvent(c.snap, ev)
	c.notify(ev)
	c.reroute(prev)
}

// refresh re-fetches the full account list and trusts it wholesale.
func (c *Console) refresh(ctx context.Context) error {
	accounts, err := c.accounts.ListAccounts(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev := cloneAccount(c.snap.Account(c.watched))
	c.snap = ApplyRefresh(c.snap, accounts)
	c.reroute(prev)

	return nil
}

func (c *Console) notify(ev feed.Event) {
	acct := ev.Account
	switch ev.Op {
	case feed.OpInsert:
		msg := fmt.Sprintf("New account registered: %s", acct.UserID)
		c.queue.Push(lifeline.NewNotification(lifeline.NotificationNewAccount, msg, c.now(), &acct))
		c.highlights.Mark(acct.UserID)
	case feed.OpUpdate:
		msg := fmt.Sprintf("Account updated: %s", acct.UserID)
		c.queue.Push(lifeline.NewNotification(lifeline.NotificationAccountUpdated, msg, c.now(), &acct))
	case feed.OpDelete:
		msg := fmt.Sprintf("Account removed: %s", acct.UserID)
		c.queue.Push(lifeline.NewNotification(lifeline.NotificationAccountUpdated, msg, c.now(), nil))
	}
}

// reroute re-resolves the watched account's destination and invokes the
// navigator when the resolution says to move. Callers hold c.mu.
func (c *Console) reroute(prev *lifeline.Account) {
	if c.watched == "" {
		return
	}

	next := c.snap.Account(c.watched)
	dest, move := lifeline.Navigate(c.dest, prev, next)
	if !move {
		return
	}

	c.dest = dest
	if c.navigate != nil {
		c.navigate(dest)
	}
}

func cloneAccount(acct *lifeline.Account) *lifeline.Account {
	if acct == nil {
		return nil
	}

	clone := *acct
	return &clone
}
