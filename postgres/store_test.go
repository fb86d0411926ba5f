package postgres_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/feed"
	"github.com/agencydesk/lifeline/lifecycle"
	"github.com/agencydesk/lifeline/postgres"
)

type StoreTestSuite struct {
	suite.Suite

	db     *gorm.DB
	broker *feed.MemoryBroker
	store  *postgres.AccountStore
}

func TestRunSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) SetupSuite() {
	err := godotenv.Load("../.env")
	var pe *fs.PathError
	if err != nil && !errors.As(err, &pe) {
		suite.Require().FailNow(err.Error())
	}

	if os.Getenv("DATABASE_TEST_URL") == "" {
		suite.T().Skip("DATABASE_TEST_URL not set; skipping store integration tests")
	}

	cfg := &postgres.CxnConfig{IsTestDB: true, URL: os.Getenv("DATABASE_TEST_URL")}
	suite.db, err = postgres.Connect(cfg, postgres.Migrations(), lifeline.Testing)
	suite.Require().Nil(err)
}

func (suite *StoreTestSuite) SetupTest() {
	suite.broker = feed.NewMemoryBroker()
	suite.store = postgres.NewAccountStore(
		suite.db,
		postgres.WithEngine(lifecycle.New()),
		postgres.WithPublisher(suite.broker),
	)
}

func (suite *StoreTestSuite) TearDownTest() {
	suite.Require().Nil(postgres.WipeDB(suite.db))
}

type recordingRevoker struct {
	revoked []string
}

func (r *recordingRevoker) Revoke(_ context.Context, userID string) error {
	r.revoked = append(r.revoked, userID)
	return nil
}

func (suite *StoreTestSuite) register(userID string, role lifeline.Role) lifeline.Account {
	acct := lifeline.Account{UserID: userID, Role: role}
	suite.Require().Nil(suite.store.Register(context.Background(), &acct))
	return acct
}

func (suite *StoreTestSuite) TestRegister() {
	// Act
	acct := suite.register("auth0|new", lifeline.RoleEmployee)

	// Assert
	suite.Equal(lifeline.ApprovalPending, acct.Approval)
	suite.NotZero(acct.ID)

	// Act: a second registration for the same subject is refused.
	err := suite.store.Register(context.Background(), &lifeline.Account{UserID: "auth0|new", Role: lifeline.RoleEmployee})

	// Assert
	suite.Require().ErrorIs(err, lifeline.ErrExists)
}

func (suite *StoreTestSuite) TestApproveCommitsAccountAndEntry() {
	// Arrange
	suite.register("auth0|a", lifeline.RoleEmployee)

	ctx := context.Background()
	events, unsub, err := suite.broker.Subscribe(ctx)
	suite.Require().Nil(err)
	defer unsub()

	// Act
	acct, err := suite.store.Approve(ctx, "admin-1", "auth0|a")

	// Assert
	suite.Require().Nil(err)
	suite.Equal(lifeline.ApprovalApproved, acct.Approval)
	suite.Equal(lifeline.StatusActive, acct.Status)
	suite.NotZero(acct.EmployeeID)

	entries, err := suite.store.ActivityLog(ctx, "auth0|a")
	suite.Require().Nil(err)
	suite.Require().Len(entries, 1)
	suite.Equal("admin-1", entries[0].ActorID)
	suite.Equal(lifeline.ApprovalPending, entries[0].PrevApproval)
	suite.Equal(lifeline.ApprovalApproved, entries[0].NewApproval)

	ev := <-events
	suite.Equal(feed.OpUpdate, ev.Op)
	suite.Equal("auth0|a", ev.Account.UserID)
}

func (suite *StoreTestSuite) TestApproveTwiceLeavesNoPartialState() {
	// Arrange
	ctx := context.Background()
	suite.register("auth0|b", lifeline.RoleEmployee)
	_, err := suite.store.Approve(ctx, "admin-1", "auth0|b")
	suite.Require().Nil(err)

	// Act
	_, err = suite.store.Approve(ctx, "admin-1", "auth0|b")

	// Assert
	suite.Require().ErrorIs(err, lifeline.ErrInvalidTransition)

	entries, err := suite.store.ActivityLog(ctx, "auth0|b")
	suite.Require().Nil(err)
	suite.Len(entries, 1)
}

func (suite *StoreTestSuite) TestHoldRejectActivateRoundTrip() {
	// Arrange
	ctx := context.Background()
	suite.register("auth0|c", lifeline.RoleEmployee)
	_, err := suite.store.Approve(ctx, "admin-1", "auth0|c")
	suite.Require().Nil(err)

	// Act
	held, err := suite.store.Hold(ctx, "admin-1", "auth0|c", lifecycle.HoldFor(2), "verification")

	// Assert
	suite.Require().Nil(err)
	suite.Equal(lifeline.StatusHold, held.Status)
	suite.Equal(2, held.HoldDays)
	suite.NotNil(held.HoldEndsAt)

	// Act
	activated, err := suite.store.Activate(ctx, "admin-1", "auth0|c")

	// Assert
	suite.Require().Nil(err)
	suite.Equal(lifeline.StatusActive, activated.Status)
	suite.False(activated.HasHoldData())

	entries, err := suite.store.ActivityLog(ctx, "auth0|c")
	suite.Require().Nil(err)
	suite.Len(entries, 3)
	// newest first
	suite.Equal(lifeline.StatusActive, entries[0].NewStatus)
	suite.Equal(lifeline.StatusHold, entries[1].NewStatus)
}

func (suite *StoreTestSuite) TestDeleteLastAdminProtected() {
	// Arrange
	ctx := context.Background()
	suite.register("auth0|root", lifeline.RoleAdmin)

	// Act
	err := suite.store.Delete(ctx, "auth0|root", "auth0|root", "cleanup")

	// Assert
	suite.Require().ErrorIs(err, lifeline.ErrLastAdmin)

	_, err = suite.store.ByUserID(ctx, "auth0|root")
	suite.Nil(err)

	// Arrange: a second admin clears the guard.
	suite.register("auth0|root2", lifeline.RoleAdmin)

	// Act
	err = suite.store.Delete(ctx, "auth0|root2", "auth0|root", "cleanup")

	// Assert
	suite.Require().Nil(err)

	_, err = suite.store.ByUserID(ctx, "auth0|root")
	suite.Require().ErrorIs(err, lifeline.ErrNotFound)

	entries, err := suite.store.ActivityLog(ctx, "auth0|root")
	suite.Require().Nil(err)
	suite.Empty(entries)
}

func (suite *StoreTestSuite) TestDeleteLastAdminKeepsCredential() {
	// Arrange
	ctx := context.Background()
	rev := &recordingRevoker{}
	store := postgres.NewAccountStore(
		suite.db,
		postgres.WithEngine(lifecycle.New()),
		postgres.WithPublisher(suite.broker),
		postgres.WithRevoker(rev),
	)

	acct := lifeline.Account{UserID: "auth0|solo-root", Role: lifeline.RoleAdmin}
	suite.Require().Nil(store.Register(ctx, &acct))

	// Act
	err := store.Delete(ctx, "auth0|solo-root", "auth0|solo-root", "cleanup")

	// Assert: the blocked delete never reached the identity provider.
	suite.Require().ErrorIs(err, lifeline.ErrLastAdmin)
	suite.Empty(rev.revoked)

	// Arrange: a second admin clears the guard.
	other := lifeline.Account{UserID: "auth0|other-root", Role: lifeline.RoleAdmin}
	suite.Require().Nil(store.Register(ctx, &other))

	// Act
	err = store.Delete(ctx, "auth0|other-root", "auth0|solo-root", "cleanup")

	// Assert
	suite.Require().Nil(err)
	suite.Equal([]string{"auth0|solo-root"}, rev.revoked)
}

func (suite *StoreTestSuite) TestChangeRoleLastAdminGuard() {
	// Arrange
	ctx := context.Background()
	suite.register("auth0|solo", lifeline.RoleAdmin)

	// Act
	_, err := suite.store.ChangeRole(ctx, "auth0|solo", "auth0|solo", lifeline.RoleManager)

	// Assert
	suite.Require().ErrorIs(err, lifeline.ErrLastAdmin)

	// Arrange
	suite.register("auth0|other", lifeline.RoleAdmin)

	// Act
	acct, err := suite.store.ChangeRole(ctx, "auth0|other", "auth0|solo", lifeline.RoleManager)

	// Assert
	suite.Require().Nil(err)
	suite.Equal(lifeline.RoleManager, acct.Role)
}

func (suite *StoreTestSuite) TestDeleteRequiresReason() {
	// Arrange
	ctx := context.Background()
	suite.register("auth0|d", lifeline.RoleEmployee)

	// Act
	err := suite.store.Delete(ctx, "admin-1", "auth0|d", " ")

	// Assert
	suite.Require().ErrorIs(err, lifeline.ErrMissingReason)
}

func (suite *StoreTestSuite) TestListAccountsNewestFirst() {
	// Arrange
	ctx := context.Background()
	suite.register("auth0|first", lifeline.RoleEmployee)
	suite.register("auth0|second", lifeline.RoleEmployee)

	// Act
	accts, err := suite.store.ListAccounts(ctx)

	// Assert
	suite.Require().Nil(err)
	suite.Require().Len(accts, 2)
	suite.True(!accts[0].CreatedAt.Before(accts[1].CreatedAt))
}
