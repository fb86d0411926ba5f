package lifeline

import "time"

// An ActivityEntry is one immutable row of the audit trail: a record of a
// single lifecycle transition on an Account.
//
// Entries are appended as a side effect of each committed transition and are
// never updated. They survive until their Account is deleted, at which point
// they are removed with it.
type ActivityEntry struct {
	Model

	// AccountUserID references the Account the transition was applied to.
	AccountUserID string `db:"account_user_id" json:"accountUserId"`

	// ActorID identifies the administrator who requested the transition.
	ActorID string `db:"actor_id" json:"actorId"`

	PrevApproval ApprovalStatus `db:"prev_approval" json:"prevApprovalStatus"`
	NewApproval  ApprovalStatus `db:"new_approval" json:"newApprovalStatus"`
	PrevStatus   Status         `db:"prev_status" json:"prevStatus,omitempty"`
	NewStatus    Status         `db:"new_status" json:"newStatus,omitempty"`
	PrevRole     Role           `db:"prev_role" json:"prevRole"`
	NewRole      Role           `db:"new_role" json:"newRole"`

	Reason string `db:"reason" json:"reason,omitempty"`

	// Hold parameters, set only when the transition placed the Account on hold.
	HoldDays   int        `db:"hold_days" json:"holdDays,omitempty"`
	HoldEndsAt *time.Time `db:"hold_ends_at" json:"holdEndDate,omitempty"`
}

// TableName names the table ActivityEntry rows persist in.
func (ActivityEntry) TableName() string { return "activity_logs" }

// Changed asserts whether the entry records an actual difference in the
// Account's lifecycle fields.
func (e ActivityEntry) Changed() bool {
	return e.PrevApproval != e.NewApproval ||
		e.PrevStatus != e.NewStatus ||
		e.PrevRole != e.NewRole
}
