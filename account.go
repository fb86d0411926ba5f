package lifeline

import (
	"fmt"
	"time"
)

// A Role is the job an Account holds within the agency.
//
// Role never gates lifecycle transitions; it only affects routing
// (cf. ResolveDestination) and the last-admin guard enforced by the store.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleSupervisor Role = "supervisor"
	RoleEmployee   Role = "employee"
)

// String stringifies the Role.
//
// String implements fmt.Stringer.
func (r Role) String() string { return string(r) }

func (r Role) Valid() error {
	switch r {
	case RoleAdmin, RoleManager, RoleSupervisor, RoleEmployee:
		return nil
	default:
		return ErrNotValid
	}
}

// An ApprovalStatus is the administrative gate on an Account:
// whether the person behind it may use the application at all.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (as ApprovalStatus) String() string { return string(as) }

func (as ApprovalStatus) Valid() error {
	switch as {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return nil
	default:
		return ErrNotValid
	}
}

// A Status is the operational availability of an approved Account.
//
// Status is meaningful only while ApprovalStatus is ApprovalApproved;
// on pending and rejected accounts it must be the zero value.
type Status string

const (
	StatusNone    Status = ""
	StatusActive  Status = "active"
	StatusHold    Status = "hold"
	StatusSuspend Status = "suspend"
)

func (s Status) String() string { return string(s) }

func (s Status) Valid() error {
	switch s {
	case StatusActive, StatusHold, StatusSuspend:
		return nil
	default:
		return ErrNotValid
	}
}

// An Account is one registered person in the agency CRM.
//
// An Account begins pending with no operational status. The lifecycle engine
// moves it between approval and operational states; the only terminal exit is
// explicit deletion, which removes the record and its audit trail.
type Account struct {
	Model

	// UserID is the identity provider's subject for the person.
	// It is assigned at registration and never changes.
	UserID string `db:"user_id" json:"userId"`

	Role     Role           `db:"role" json:"role"`
	Approval ApprovalStatus `db:"approval" json:"approvalStatus"`
	Status   Status         `db:"status" json:"status,omitempty"`

	// StatusReason carries the human context for a reject, hold, or suspend.
	// Activation replaces it with a system-generated note.
	StatusReason string `db:"status_reason" json:"statusReason,omitempty"`

	// EmployeeID is generated exactly once, at approval, and never reassigned.
	EmployeeID  string     `db:"employee_id" json:"employeeId,omitempty"`
	JoiningDate *time.Time `db:"joining_date" json:"joiningDate,omitempty"`

	// The hold triple. All three are set together when the account is placed
	// on hold and cleared together when it leaves hold.
	HoldDays     int        `db:"hold_days" json:"holdDays,omitempty"`
	HoldStartsAt *time.Time `db:"hold_starts_at" json:"holdStartDate,omitempty"`
	HoldEndsAt   *time.Time `db:"hold_ends_at" json:"holdEndDate,omitempty"`
}

// Approved asserts whether the Account passed administrative review.
func (a Account) Approved() bool { return a.Approval == ApprovalApproved }

// Held asserts whether the Account is currently on hold.
func (a Account) Held() bool { return a.Approved() && a.Status == StatusHold }

// CanOperate asserts whether the Account's properties give it general
// access to the application.
func (a Account) CanOperate() bool {
	return a.Approved() && a.Status == StatusActive
}

// IsAdmin asserts whether the Account holds the admin Role.
func (a Account) IsAdmin() bool { return a.Role == RoleAdmin }

// HasHoldData asserts whether any member of the hold triple is set.
func (a Account) HasHoldData() bool {
	return a.HoldDays != 0 || a.HoldStartsAt != nil || a.HoldEndsAt != nil
}

// ClearHold zeroes the hold triple.
func (a *Account) ClearHold() {
	a.HoldDays = 0
	a.HoldStartsAt = nil
	a.HoldEndsAt = nil
}

// Valid checks the Account's structural invariants:
//
//   - UserID and a known Role are required.
//   - Status is set if and only if the Account is approved.
//   - The hold triple is fully present while on hold and fully absent otherwise.
//   - EmployeeID exists if and only if the Account has been approved.
func (a Account) Valid() error {
	if a.UserID == "" {
		return fmt.Errorf("%w: UserID required", ErrMissingData)
	}

	if err := a.Role.Valid(); err != nil {
		return fmt.Errorf("%w: role %q", ErrNotValid, a.Role)
	}

	if err := a.Approval.Valid(); err != nil {
		return fmt.Errorf("%w: approval status %q", ErrNotValid, a.Approval)
	}

	if a.Approved() {
		if err := a.Status.Valid(); err != nil {
			return fmt.Errorf("%w: approved account requires an operational status", ErrNotValid)
		}
		if a.EmployeeID == "" {
			return fmt.Errorf("%w: approved account requires an employee ID", ErrMissingData)
		}
	} else if a.Status != StatusNone {
		return fmt.Errorf("%w: %s account cannot hold status %q", ErrNotValid, a.Approval, a.Status)
	}

	holdComplete := a.HoldDays > 0 && a.HoldStartsAt != nil && a.HoldEndsAt != nil
	switch {
	case a.Held() && !holdComplete:
		return fmt.Errorf("%w: held account missing hold window data", ErrMissingData)
	case !a.Held() && a.HasHoldData():
		return fmt.Errorf("%w: hold window data on a %q account", ErrNotValid, a.Status)
	}

	return nil
}

// GetUserID retrieves the identity provider subject for the Account.
//
// GetUserID implements [github.com/agencydesk/lifeline/logger.LogAccount].
func (a Account) GetUserID() string { return a.UserID }
