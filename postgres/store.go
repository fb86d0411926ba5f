package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/feed"
	"github.com/agencydesk/lifeline/lifecycle"
	"github.com/agencydesk/lifeline/logger"
)

// Cf., https://www.postgresql.org/docs/current/errcodes-appendix.html
var errUniqViolation = regexp.MustCompile(`SQLSTATE (23505)`)

// A Publisher receives the row-level change events the store emits after
// each committed write.
type Publisher interface {
	Publish(ctx context.Context, ev feed.Event) error
}

// An IdentityRevoker removes an account's credential at the external
// identity provider.
type IdentityRevoker interface {
	Revoke(ctx context.Context, userID string) error
}

// An AccountStore is the single writer of truth for account lifecycle state.
//
// Every transition commits the next account record and its audit entry in one
// transaction, so readers never observe a transition without its log entry.
// Writes to the same account serialize on a row lock, keeping updates in
// submission order per key.
type AccountStore struct {
	db  *gorm.DB
	eng *lifecycle.Engine
	pub Publisher
	rev IdentityRevoker
	l   logger.Logger
}

// A StoreOptFn is a functional option configuring an AccountStore when constructing a new one.
type StoreOptFn func(*AccountStore)

// WithEngine sets the lifecycle Engine the store runs transitions through.
func WithEngine(eng *lifecycle.Engine) StoreOptFn {
	return func(s *AccountStore) { s.eng = eng }
}

// WithPublisher sets the change-feed Publisher notified after each commit.
func WithPublisher(pub Publisher) StoreOptFn {
	return func(s *AccountStore) { s.pub = pub }
}

// WithRevoker sets the IdentityRevoker invoked when an account is deleted.
func WithRevoker(rev IdentityRevoker) StoreOptFn {
	return func(s *AccountStore) { s.rev = rev }
}

// WithLogger sets the logger.Logger the store reports soft failures through.
func WithLogger(l logger.Logger) StoreOptFn {
	return func(s *AccountStore) { s.l = l }
}

// NewAccountStore constructs an AccountStore on the given connection.
func NewAccountStore(db *gorm.DB, opts ...StoreOptFn) *AccountStore {
	s := &AccountStore{db: db, eng: lifecycle.New()}
	for _, opt := range opts {
		opt(s)
	}

	if s.l == nil {
		s.l = logger.NewLogger()
	}

	return s
}

// Register inserts a newly registered account in its pending state.
func (s *AccountStore) Register(ctx context.Context, acct *lifeline.Account) error {
	if acct.Approval == "" {
		acct.Approval = lifeline.ApprovalPending
	}
	if acct.Role == "" {
		acct.Role = lifeline.RoleEmployee
	}

	if err := acct.Valid(); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Create(acct).Error
	switch {
	case err == nil:
	case errUniqViolation.MatchString(err.Error()):
		return fmt.Errorf("%w: account %q", lifeline.ErrExists, acct.UserID)
	default:
		return fmt.Errorf("%w: failed registering account: %s", lifeline.ErrUnexpected, err)
	}

	s.publish(ctx, feed.OpInsert, *acct)
	return nil
}

// A TransitionFn computes the next state of an account, typically by closing
// over one of the lifecycle Engine's operations.
type TransitionFn func(lifeline.Account) (lifecycle.Result, error)

// Apply runs fn against the current row for userID and commits the outcome.
//
// The row is locked for the duration, serializing concurrent transitions on
// the same account. Validation failures from fn propagate unwrapped and leave
// no partial state behind.
func (s *AccountStore) Apply(ctx context.Context, userID string, fn TransitionFn) (*lifeline.Account, error) {
	var next lifeline.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}

		res, err := fn(acct)
		if err != nil {
			return err
		}

		if err := res.Account.Valid(); err != nil {
			return err
		}

		if err := tx.Save(&res.Account).Error; err != nil {
			return fmt.Errorf("%w: failed saving account: %s", lifeline.ErrUnexpected, err)
		}

		if err := tx.Create(&res.Entry).Error; err != nil {
			return fmt.Errorf("%w: failed appending activity entry: %s", lifeline.ErrUnexpected, err)
		}

		next = res.Account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, feed.OpUpdate, next)
	return &next, nil
}

// Approve moves the pending account for userID into approved, active service.
func (s *AccountStore) Approve(ctx context.Context, actorID, userID string) (*lifeline.Account, error) {
	return s.Apply(ctx, userID, func(a lifeline.Account) (lifecycle.Result, error) {
		return s.eng.Approve(a, actorID)
	})
}

// Reject declines the pending account for userID.
func (s *AccountStore) Reject(ctx context.Context, actorID, userID, reason string) (*lifeline.Account, error) {
	return s.Apply(ctx, userID, func(a lifeline.Account) (lifecycle.Result, error) {
		return s.eng.Reject(a, actorID, reason)
	})
}

// Hold places the approved account for userID on hold for the given window.
func (s *AccountStore) Hold(ctx context.Context, actorID, userID string, w lifecycle.HoldWindow, reason string) (*lifeline.Account, error) {
	return s.Apply(ctx, userID, func(a lifeline.Account) (lifecycle.Result, error) {
		return s.eng.Hold(a, actorID, w, reason)
	})
}

// Suspend takes the approved account for userID out of service indefinitely.
func (s *AccountStore) Suspend(ctx context.Context, actorID, userID, reason string) (*lifeline.Account, error) {
	return s.Apply(ctx, userID, func(a lifeline.Account) (lifecycle.Result, error) {
		return s.eng.Suspend(a, actorID, reason)
	})
}

// Activate returns the held or suspended account for userID to active service.
func (s *AccountStore) Activate(ctx context.Context, actorID, userID string) (*lifeline.Account, error) {
	return s.Apply(ctx, userID, func(a lifeline.Account) (lifecycle.Result, error) {
		return s.eng.Activate(a, actorID)
	})
}

// ChangeRole updates the role on the account for userID.
//
// Demoting the system's last admin fails with ErrLastAdmin; without at least
// one admin no one could administer accounts at all, the same lockout the
// delete guard prevents.
func (s *AccountStore) ChangeRole(ctx context.Context, actorID, userID string, role lifeline.Role) (*lifeline.Account, error) {
	var next lifeline.Account
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}

		res, err := s.eng.ChangeRole(acct, actorID, role)
		if err != nil {
			return err
		}

		if acct.IsAdmin() && !res.Account.IsAdmin() {
			if err := requireAnotherAdmin(tx, userID); err != nil {
				return err
			}
		}

		if err := tx.Save(&res.Account).Error; err != nil {
			return fmt.Errorf("%w: failed saving account: %s", lifeline.ErrUnexpected, err)
		}

		if err := tx.Create(&res.Entry).Error; err != nil {
			return fmt.Errorf("%w: failed appending activity entry: %s", lifeline.ErrUnexpected, err)
		}

		next = res.Account
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, feed.OpUpdate, next)
	return &next, nil
}

// Delete permanently removes the account for userID, its audit trail, and its
// identity-provider credential. There is no undo.
//
// Deleting the last remaining admin account fails with ErrLastAdmin. The
// credential is revoked before the rows go away: a failed revocation leaves
// the account intact and retryable, never a live credential with no record.
func (s *AccountStore) Delete(ctx context.Context, actorID, userID, reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("%w: a non-empty reason is required", lifeline.ErrMissingReason)
	}

	target, err := s.ByUserID(ctx, userID)
	if err != nil {
		return err
	}

	// Run the last-admin guard before touching the identity provider:
	// revocation cannot be undone, so a blocked delete must leave the
	// credential alive. The transaction re-checks under the row lock.
	if target.IsAdmin() {
		if err := requireAnotherAdmin(s.db.WithContext(ctx), userID); err != nil {
			return err
		}
	}

	if s.rev != nil {
		if err := s.rev.Revoke(ctx, userID); err != nil {
			return fmt.Errorf("%w: failed revoking credential: %s", lifeline.ErrUnexpected, err)
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		acct, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}

		if acct.IsAdmin() {
			if err := requireAnotherAdmin(tx, userID); err != nil {
				return err
			}
		}

		// The activity_logs FK cascades, but deleting explicitly keeps the
		// audit-trail removal visible here rather than buried in the schema.
		if err := tx.Where("account_user_id = ?", userID).Delete(&lifeline.ActivityEntry{}).Error; err != nil {
			return fmt.Errorf("%w: failed removing activity log: %s", lifeline.ErrUnexpected, err)
		}

		if err := tx.Delete(&acct).Error; err != nil {
			return fmt.Errorf("%w: failed deleting account: %s", lifeline.ErrUnexpected, err)
		}

		s.l.Info(fmt.Sprintf("account %s deleted by %s: %s", userID, actorID, reason), nil)
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, feed.OpDelete, *target)
	return nil
}

// ByUserID fetches the account for userID.
func (s *AccountStore) ByUserID(ctx context.Context, userID string) (*lifeline.Account, error) {
	var acct lifeline.Account
	err := s.db.WithContext(ctx).First(&acct, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("%w: account %q", lifeline.ErrNotFound, userID)
	case err != nil:
		return nil, fmt.Errorf("%w: %s", lifeline.ErrUnexpected, err)
	}

	return &acct, nil
}

// ListAccounts fetches every account, newest registration first.
//
// The list is the unit of truth for a console's periodic refresh, which is
// why it is always fetched whole rather than patched incrementally.
func (s *AccountStore) ListAccounts(ctx context.Context) ([]lifeline.Account, error) {
	var accts []lifeline.Account
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&accts).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lifeline.ErrUnexpected, err)
	}

	return accts, nil
}

// ActivityLog fetches the audit trail for userID, newest entry first.
func (s *AccountStore) ActivityLog(ctx context.Context, userID string) ([]lifeline.ActivityEntry, error) {
	var entries []lifeline.ActivityEntry
	err := s.db.WithContext(ctx).
		Where("account_user_id = ?", userID).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %s", lifeline.ErrUnexpected, err)
	}

	return entries, nil
}

// publish hands the committed change to the feed.
//
// Publishing happens strictly after commit and its failure is soft: a missed
// event is made up for by the next periodic refresh.
func (s *AccountStore) publish(ctx context.Context, op feed.Op, acct lifeline.Account) {
	if s.pub == nil {
		return
	}

	ev := feed.Event{Op: op, Account: acct, At: time.Now()}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.l.Warn("failed publishing account change", &logger.LogContext{Error: err, Account: acct})
	}
}

// lockAccount fetches the row for userID under FOR UPDATE,
// serializing concurrent transitions on the same account.
func lockAccount(tx *gorm.DB, userID string) (lifeline.Account, error) {
	var acct lifeline.Account
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&acct, "user_id = ?", userID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return acct, fmt.Errorf("%w: account %q", lifeline.ErrNotFound, userID)
	case err != nil:
		return acct, fmt.Errorf("%w: %s", lifeline.ErrUnexpected, err)
	}

	return acct, nil
}

// requireAnotherAdmin errors with ErrLastAdmin unless an admin account other
// than userID exists.
func requireAnotherAdmin(tx *gorm.DB, userID string) error {
	var count int64
	err := tx.Model(&lifeline.Account{}).
		Where("role = ?", lifeline.RoleAdmin).
		Not("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("%w: %s", lifeline.ErrUnexpected, err)
	}

	if count == 0 {
		return fmt.Errorf("%w: %q is the only admin account", lifeline.ErrLastAdmin, userID)
	}

	return nil
}
