package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/http/api"
	"github.com/agencydesk/lifeline/http/middleware"
	"github.com/agencydesk/lifeline/lifecycle"
)

type stubStore struct {
	acct *lifeline.Account
	err  error

	approvals  int
	lastActor  string
	lastUserID string
	lastReason string
	lastRole   lifeline.Role
	lastWindow lifecycle.HoldWindow
}

func (s *stubStore) Approve(_ context.Context, actorID, userID string) (*lifeline.Account, error) {
	s.approvals++
	s.lastActor, s.lastUserID = actorID, userID
	return s.acct, s.err
}

func (s *stubStore) Reject(_ context.Context, actorID, userID, reason string) (*lifeline.Account, error) {
	s.lastActor, s.lastUserID, s.lastReason = actorID, userID, reason
	return s.acct, s.err
}

func (s *stubStore) Hold(_ context.Context, actorID, userID string, w lifecycle.HoldWindow, reason string) (*lifeline.Account, error) {
	s.lastActor, s.lastUserID, s.lastWindow, s.lastReason = actorID, userID, w, reason
	return s.acct, s.err
}

func (s *stubStore) Suspend(_ context.Context, actorID, userID, reason string) (*lifeline.Account, error) {
	s.lastActor, s.lastUserID, s.lastReason = actorID, userID, reason
	return s.acct, s.err
}

func (s *stubStore) Activate(_ context.Context, actorID, userID string) (*lifeline.Account, error) {
	s.lastActor, s.lastUserID = actorID, userID
	return s.acct, s.err
}

func (s *stubStore) ChangeRole(_ context.Context, actorID, userID string, role lifeline.Role) (*lifeline.Account, error) {
	s.lastActor, s.lastUserID, s.lastRole = actorID, userID, role
	return s.acct, s.err
}

func (s *stubStore) Delete(_ context.Context, actorID, userID, reason string) error {
	s.lastActor, s.lastUserID, s.lastReason = actorID, userID, reason
	return s.err
}

func (s *stubStore) ByUserID(_ context.Context, userID string) (*lifeline.Account, error) {
	return s.acct, s.err
}

func (s *stubStore) ListAccounts(_ context.Context) ([]lifeline.Account, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []lifeline.Account{*s.acct}, nil
}

func (s *stubStore) ActivityLog(_ context.Context, userID string) ([]lifeline.ActivityEntry, error) {
	s.lastUserID = userID
	return nil, s.err
}

// serve routes req through the Handler's route table with an admin actor in context.
func serve(store *stubStore, req *http.Request) *httptest.ResponseRecorder {
	h := api.NewHandler(store, nil)
	m := mux.NewRouter()
	for _, rt := range h.Routes() {
		m.Handle(rt.Path, rt.Handler).Methods(rt.Method)
	}

	actor := lifeline.Account{UserID: "auth0|admin", Role: lifeline.RoleAdmin, Approval: lifeline.ApprovalApproved}
	req = req.Clone(context.WithValue(req.Context(), lifeline.CurrentAccountKey, actor))

	w := httptest.NewRecorder()
	m.ServeHTTP(w, req)
	return w
}

// serveWith is serve with the route middlewares applied,
// for handlers constructed with options.
func serveWith(h *api.Handler, req *http.Request) *httptest.ResponseRecorder {
	m := mux.NewRouter()
	for _, rt := range h.Routes() {
		m.Handle(rt.Path, middleware.Chain(rt.Handler, rt.Middlewares...)).Methods(rt.Method)
	}

	actor := lifeline.Account{UserID: "auth0|admin", Role: lifeline.RoleAdmin, Approval: lifeline.ApprovalApproved}
	req = req.Clone(context.WithValue(req.Context(), lifeline.CurrentAccountKey, actor))

	w := httptest.NewRecorder()
	m.ServeHTTP(w, req)
	return w
}

func activeAccount(userID string) *lifeline.Account {
	return &lifeline.Account{
		UserID:     userID,
		Role:       lifeline.RoleEmployee,
		Approval:   lifeline.ApprovalApproved,
		Status:     lifeline.StatusActive,
		EmployeeID: "EMP-1",
	}
}

func TestApprove(t *testing.T) {
	// Arrange
	store := &stubStore{acct: activeAccount("auth0|a")}
	req := httptest.NewRequest(http.MethodPost, "/accounts/auth0|a/approve", nil)

	// Act
	w := serve(store, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "auth0|admin", store.lastActor)
	require.Equal(t, "auth0|a", store.lastUserID)

	var body struct {
		Account lifeline.Account `json:"account"`
	}
	require.Nil(t, json.NewDecoder(w.Body).Decode(&body))
	require.Equal(t, "auth0|a", body.Account.UserID)
}

func TestErrorMapping(t *testing.T) {
	tcs := []struct {
		name     string
		err      error
		expected int
	}{
		{"InvalidTransition", fmt.Errorf("%w: already approved", lifeline.ErrInvalidTransition), http.StatusUnprocessableEntity},
		{"MissingReason", lifeline.ErrMissingReason, http.StatusUnprocessableEntity},
		{"LastAdmin", lifeline.ErrLastAdmin, http.StatusConflict},
		{"NotFound", lifeline.ErrNotFound, http.StatusNotFound},
		{"Unexpected", lifeline.ErrUnexpected, http.StatusInternalServerError},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			store := &stubStore{err: tc.err}
			req := httptest.NewRequest(http.MethodPost, "/accounts/auth0|a/approve", nil)

			// Act
			w := serve(store, req)

			// Assert
			require.Equal(t, tc.expected, w.Code)

			var body map[string]string
			require.Nil(t, json.NewDecoder(w.Body).Decode(&body))
			require.NotEmpty(t, body["error"])
		})
	}
}

func TestHold(t *testing.T) {
	t.Run("PresetDays", func(t *testing.T) {
		// Arrange
		store := &stubStore{acct: activeAccount("auth0|a")}
		req := httptest.NewRequest(
			http.MethodPost,
			"/accounts/auth0|a/hold",
			strings.NewReader(`{"holdDays": 2, "reason": "verification"}`),
		)

		// Act
		w := serve(store, req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, lifecycle.HoldFor(2), store.lastWindow)
		require.Equal(t, "verification", store.lastReason)
	})

	t.Run("ExplicitEnd", func(t *testing.T) {
		// Arrange
		store := &stubStore{acct: activeAccount("auth0|a")}
		until := time.Date(2026, time.March, 11, 9, 0, 0, 0, time.UTC)
		payload := fmt.Sprintf(`{"holdEndsAt": %q, "reason": "verification"}`, until.Format(time.RFC3339))
		req := httptest.NewRequest(http.MethodPost, "/accounts/auth0|a/hold", strings.NewReader(payload))

		// Act
		w := serve(store, req)

		// Assert
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, lifecycle.HoldUntil(until), store.lastWindow)
	})

	t.Run("BothFieldsRefused", func(t *testing.T) {
		// Arrange
		store := &stubStore{acct: activeAccount("auth0|a")}
		req := httptest.NewRequest(
			http.MethodPost,
			"/accounts/auth0|a/hold",
			strings.NewReader(`{"holdDays": 2, "holdEndsAt": "2026-03-11T09:00:00Z", "reason": "verification"}`),
		)

		// Act
		w := serve(store, req)

		// Assert
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		// Arrange
		store := &stubStore{acct: activeAccount("auth0|a")}
		req := httptest.NewRequest(http.MethodPost, "/accounts/auth0|a/hold", strings.NewReader("{"))

		// Act
		w := serve(store, req)

		// Assert
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestChangeRole(t *testing.T) {
	// Arrange
	store := &stubStore{acct: activeAccount("auth0|a")}
	req := httptest.NewRequest(http.MethodPut, "/accounts/auth0|a/role", strings.NewReader(`{"role": "manager"}`))

	// Act
	w := serve(store, req)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, lifeline.RoleManager, store.lastRole)
}

func TestDeleteAccount(t *testing.T) {
	// Arrange
	store := &stubStore{}
	req := httptest.NewRequest(http.MethodDelete, "/accounts/auth0|a", strings.NewReader(`{"reason": "offboarded"}`))

	// Act
	w := serve(store, req)

	// Assert
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "offboarded", store.lastReason)
	require.Equal(t, "auth0|a", store.lastUserID)
	require.Empty(t, w.Header().Get("Content-Type"))
	require.Zero(t, w.Body.Len())
}

func TestIdempotentTransitions(t *testing.T) {
	// Arrange
	store := &stubStore{acct: activeAccount("auth0|a")}
	h := api.NewHandler(store, nil, api.WithReplayCache(middleware.NewReplayMap()))

	// Act: a retried approve carries the same key.
	var codes []int
	var bodies []string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/accounts/auth0|a/approve", nil)
		req.Header.Set(middleware.IdempotencyHeader, "9c1f0f1e-approve")

		w := serveWith(h, req)
		codes = append(codes, w.Code)
		bodies = append(bodies, w.Body.String())
	}

	// Assert: the transition ran once and the retry replayed its response.
	require.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)
	require.Equal(t, bodies[0], bodies[1])
	require.Equal(t, 1, store.approvals)

	// Act: a keyless transition POST is refused outright.
	req := httptest.NewRequest(http.MethodPost, "/accounts/auth0|a/suspend", strings.NewReader(`{"reason": "fraud"}`))
	w := serveWith(h, req)

	// Assert
	require.Equal(t, http.StatusBadRequest, w.Code)
}
