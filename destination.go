package lifeline

// A Destination is the one canonical view an Account should be looking at,
// given its current lifecycle state.
//
// Every authenticated screen resolves its Destination on mount and again on
// every account-change event; screens themselves never inspect lifecycle
// fields directly.
type Destination string

const (
	DestProfileCompletion Destination = "profile-completion"
	DestApprovalPending   Destination = "approval-pending"
	DestDashboard         Destination = "dashboard"
	DestAdminPanel        Destination = "admin"
	DestHoldPage          Destination = "hold"
	DestSuspendedPage     Destination = "suspended"
	DestRejectedPage      Destination = "rejected"
)

func (d Destination) String() string { return string(d) }

func (d Destination) Valid() error {
	switch d {
	case DestProfileCompletion, DestApprovalPending, DestDashboard,
		DestAdminPanel, DestHoldPage, DestSuspendedPage, DestRejectedPage:
		return nil
	default:
		return ErrNotValid
	}
}

// Path returns the relative URL path a UI serves the Destination at.
func (d Destination) Path() string { return "/" + string(d) }

// ResolveDestination maps an Account's current lifecycle state to exactly one
// Destination. A nil acct means the authenticated identity has no account
// record yet.
//
// ResolveDestination is pure: same input, same output. Resolution is ordered,
// first match wins; in particular an approved admin lands on the admin panel
// regardless of operational status.
func ResolveDestination(acct *Account) Destination {
	switch {
	case acct == nil:
		return DestProfileCompletion
	case acct.IsAdmin() && acct.Approved():
		return DestAdminPanel
	case acct.Approval == ApprovalPending:
		return DestApprovalPending
	case acct.Approval == ApprovalRejected:
		return DestRejectedPage
	case acct.Approved() && acct.Status == StatusActive:
		return DestDashboard
	case acct.Approved() && acct.Status == StatusHold:
		return DestHoldPage
	case acct.Approved() && acct.Status == StatusSuspend:
		return DestSuspendedPage
	default:
		return DestProfileCompletion
	}
}

// StateChanged asserts whether any routed lifecycle field differs between two
// observations of the same Account. Either side may be nil.
func StateChanged(prev, next *Account) bool {
	switch {
	case prev == nil && next == nil:
		return false
	case prev == nil || next == nil:
		return true
	}

	return prev.Approval != next.Approval ||
		prev.Status != next.Status ||
		prev.Role != next.Role
}

// Navigate decides where a screen currently showing current should send the
// account after observing it change from prev to next. It returns the
// Destination to display and whether a navigation is actually required.
//
// A rejected, held, or suspended screen, once reached, only forwards on a real
// state-field change; re-delivering the same record must not bounce the
// account back through approval-pending.
func Navigate(current Destination, prev, next *Account) (Destination, bool) {
	resolved := ResolveDestination(next)
	if resolved == current {
		return current, false
	}

	switch current {
	case DestRejectedPage, DestHoldPage, DestSuspendedPage:
		if !StateChanged(prev, next) {
			return current, false
		}
	}

	return resolved, true
}
