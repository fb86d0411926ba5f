/*
Package lifecycle implements the account lifecycle engine: the rules governing
how an account moves between registration, administrative approval,
operational enablement, and deletion.

The [Engine] is a set of pure functions. Each transition takes the current
account record and returns the next record paired with the single audit entry
describing the change, or a validation failure. Failures are sentinel-wrapped
so callers can distinguish business-rule rejections from storage trouble:

	res, err := engine.Hold(acct, actorID, lifecycle.HoldFor(2), "verification")
	if errors.Is(err, lifeline.ErrInvalidHoldWindow) { ... }

The Engine never touches storage. Committing a Result atomically - account
row plus audit entry - belongs to [github.com/agencydesk/lifeline/postgres].
*/
package lifecycle
