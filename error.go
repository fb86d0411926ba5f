package lifeline

import "errors"

var (
	ErrBadConfig   = errors.New("bad config")
	ErrExists      = errors.New("already exists")
	ErrMissingData = errors.New("missing data")
	ErrNotExist    = errors.New("not exist")
	ErrNotFound    = errors.New("not found")
	ErrNotValid    = errors.New("invalid")
	ErrUnexpected  = errors.New("unexpected")
)

// Lifecycle transition failures.
//
// These are business-rule rejections, not transport or storage failures.
// A caller receiving one of these can assume no state was committed.
var (
	// ErrInvalidTransition returns when the account's current lifecycle state
	// does not allow the requested transition.
	ErrInvalidTransition = errors.New("invalid state for transition")

	// ErrMissingReason returns when a transition requiring explanatory text
	// receives none, or only blank text.
	ErrMissingReason = errors.New("missing reason")

	// ErrInvalidHoldWindow returns when a hold supplies neither or both of a
	// preset day count and an explicit end timestamp, or an end timestamp
	// that is not in the future.
	ErrInvalidHoldWindow = errors.New("invalid hold window")

	// ErrLastAdmin returns when an operation would leave the system without
	// any admin account.
	ErrLastAdmin = errors.New("last admin protected")
)
