package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agencydesk/lifeline"
)

// An Engine validates and computes account lifecycle transitions.
//
// The Engine is pure: it performs no I/O, holds no account state, and apart
// from its injectable clock is deterministic. Persisting the computed record
// and its audit entry is the store's job.
type Engine struct {
	now   func() time.Time
	empID func(time.Time) string
}

// An EngineOptFn is a functional option configuring an Engine when constructing a new one.
type EngineOptFn func(*Engine)

// WithClock sets the source of "now" the Engine schedules against.
func WithClock(now func() time.Time) EngineOptFn {
	return func(e *Engine) {
		e.now = now
	}
}

// WithEmployeeID sets the generator for employee identifiers assigned at approval.
//
// Generated identifiers must be unique; their format is up to the generator.
func WithEmployeeID(gen func(time.Time) string) EngineOptFn {
	return func(e *Engine) {
		e.empID = gen
	}
}

// New constructs an Engine. By default it reads the wall clock and derives
// employee identifiers from the approval date plus a random token.
func New(opts ...EngineOptFn) *Engine {
	e := &Engine{
		now:   time.Now,
		empID: defaultEmployeeID,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// A Result is the outcome of a successful transition: the next Account record
// and the single audit entry capturing what changed.
type Result struct {
	Account lifeline.Account
	Entry   lifeline.ActivityEntry
}

// Approve moves a pending account into approved, active service.
//
// Approval assigns the account its employee identifier and joining date and
// clears any reason text left over from registration review. Approving an
// already-approved or rejected account fails with ErrInvalidTransition;
// approval is deliberately not idempotent.
func (e *Engine) Approve(acct lifeline.Account, actorID string) (Result, error) {
	if acct.Approval != lifeline.ApprovalPending {
		return Result{}, fmt.Errorf("%w: approve requires a pending account, have %q",
			lifeline.ErrInvalidTransition, acct.Approval)
	}

	now := e.now()
	prev := acct

	acct.Approval = lifeline.ApprovalApproved
	acct.Status = lifeline.StatusActive
	acct.StatusReason = ""
	acct.EmployeeID = e.empID(now)
	joined := startOfDay(now)
	acct.JoiningDate = &joined

	return Result{Account: acct, Entry: newEntry(prev, acct, actorID, "")}, nil
}

// Reject declines a pending account. The reason is mandatory and recorded on
// the account; the operational status stays unset, since rejection is
// terminal relative to it.
func (e *Engine) Reject(acct lifeline.Account, actorID, reason string) (Result, error) {
	if acct.Approval != lifeline.ApprovalPending {
		return Result{}, fmt.Errorf("%w: reject requires a pending account, have %q",
			lifeline.ErrInvalidTransition, acct.Approval)
	}

	reason, err := requireReason(reason)
	if err != nil {
		return Result{}, err
	}

	prev := acct
	acct.Approval = lifeline.ApprovalRejected
	acct.StatusReason = reason

	return Result{Account: acct, Entry: newEntry(prev, acct, actorID, reason)}, nil
}

// Hold takes an approved account out of service until the window elapses.
//
// Exactly one of a preset day count or an explicit future end timestamp must
// be supplied via the HoldWindow, plus a mandatory reason.
func (e *Engine) Hold(acct lifeline.Account, actorID string, w HoldWindow, reason string) (Result, error) {
	if !acct.Approved() {
		return Result{}, fmt.Errorf("%w: hold requires an approved account, have %q",
			lifeline.ErrInvalidTransition, acct.Approval)
	}

	reason, err := requireReason(reason)
	if err != nil {
		return Result{}, err
	}

	days, start, end, err := w.schedule(e.now())
	if err != nil {
		return Result{}, err
	}

	prev := acct
	acct.Status = lifeline.StatusHold
	acct.StatusReason = reason
	acct.HoldDays = days
	acct.HoldStartsAt = &start
	acct.HoldEndsAt = &end

	entry := newEntry(prev, acct, actorID, reason)
	entry.HoldDays = days
	entry.HoldEndsAt = &end

	return Result{Account: acct, Entry: entry}, nil
}

// Suspend takes an approved account out of service indefinitely.
// Any hold window on the account is cleared unconditionally.
func (e *Engine) Suspend(acct lifeline.Account, actorID, reason string) (Result, error) {
	if !acct.Approved() {
		return Result{}, fmt.Errorf("%w: suspend requires an approved account, have %q",
			lifeline.ErrInvalidTransition, acct.Approval)
	}

	reason, err := requireReason(reason)
	if err != nil {
		return Result{}, err
	}

	prev := acct
	acct.Status = lifeline.StatusSuspend
	acct.StatusReason = reason
	acct.ClearHold()

	return Result{Account: acct, Entry: newEntry(prev, acct, actorID, reason)}, nil
}

// Activate returns a held or suspended account to active service.
//
// The hold triple is fully cleared regardless of which state the account was
// in, and the reason text is replaced with a system-generated audit note.
func (e *Engine) Activate(acct lifeline.Account, actorID string) (Result, error) {
	if !acct.Approved() {
		return Result{}, fmt.Errorf("%w: activate requires an approved account, have %q",
			lifeline.ErrInvalidTransition, acct.Approval)
	}

	if acct.Status != lifeline.StatusHold && acct.Status != lifeline.StatusSuspend {
		return Result{}, fmt.Errorf("%w: activate requires a held or suspended account, have %q",
			lifeline.ErrInvalidTransition, acct.Status)
	}

	note := fmt.Sprintf("activated by admin on %s", e.now().Format(time.RFC3339))

	prev := acct
	acct.Status = lifeline.StatusActive
	acct.StatusReason = note
	acct.ClearHold()

	return Result{Account: acct, Entry: newEntry(prev, acct, actorID, note)}, nil
}

// ChangeRole updates the account's role and nothing else.
//
// ChangeRole is an administrative override allowed regardless of approval or
// operational state. The store separately refuses demoting the system's last
// admin, mirroring its guard on deletion.
func (e *Engine) ChangeRole(acct lifeline.Account, actorID string, role lifeline.Role) (Result, error) {
	if err := role.Valid(); err != nil {
		return Result{}, fmt.Errorf("%w: unknown role %q", lifeline.ErrNotValid, role)
	}

	prev := acct
	acct.Role = role

	return Result{Account: acct, Entry: newEntry(prev, acct, actorID, "")}, nil
}

// newEntry records the difference between two observations of an account.
func newEntry(prev, next lifeline.Account, actorID, reason string) lifeline.ActivityEntry {
	return lifeline.ActivityEntry{
		AccountUserID: next.UserID,
		ActorID:       actorID,
		PrevApproval:  prev.Approval,
		NewApproval:   next.Approval,
		PrevStatus:    prev.Status,
		NewStatus:     next.Status,
		PrevRole:      prev.Role,
		NewRole:       next.Role,
		Reason:        reason,
	}
}

// requireReason trims and validates mandatory reason text.
func requireReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", fmt.Errorf("%w: a non-empty reason is required", lifeline.ErrMissingReason)
	}

	return reason, nil
}

// defaultEmployeeID derives an employee identifier from the approval date and
// a random token. Uniqueness comes from the token; the date prefix just makes
// the identifier legible to humans.
func defaultEmployeeID(now time.Time) string {
	token := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("EMP-%s-%s", now.Format("20060102"), token)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
