package api

import (
	"context"
	"net/http"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/http/middleware"
	"github.com/agencydesk/lifeline/http/router"
	"github.com/agencydesk/lifeline/lifecycle"
	"github.com/agencydesk/lifeline/logger"
)

// An AccountStore is the set of account operations the API exposes.
//
// *postgres.AccountStore satisfies it.
type AccountStore interface {
	Approve(ctx context.Context, actorID, userID string) (*lifeline.Account, error)
	Reject(ctx context.Context, actorID, userID, reason string) (*lifeline.Account, error)
	Hold(ctx context.Context, actorID, userID string, w lifecycle.HoldWindow, reason string) (*lifeline.Account, error)
	Suspend(ctx context.Context, actorID, userID, reason string) (*lifeline.Account, error)
	Activate(ctx context.Context, actorID, userID string) (*lifeline.Account, error)
	ChangeRole(ctx context.Context, actorID, userID string, role lifeline.Role) (*lifeline.Account, error)
	Delete(ctx context.Context, actorID, userID, reason string) error
	ByUserID(ctx context.Context, userID string) (*lifeline.Account, error)
	ListAccounts(ctx context.Context) ([]lifeline.Account, error)
	ActivityLog(ctx context.Context, userID string) ([]lifeline.ActivityEntry, error)
}

// A Handler serves the admin account API.
type Handler struct {
	store   AccountStore
	l       logger.Logger
	replays middleware.ReplayCache
}

// A HandlerOptFn configures a Handler constructed by NewHandler.
type HandlerOptFn func(*Handler)

// WithReplayCache turns on idempotency for the Handler's transition routes,
// storing replayed responses in cache. A retried POST carrying the same
// Idempotency-Key replays the first response instead of transitioning twice.
func WithReplayCache(cache middleware.ReplayCache) HandlerOptFn {
	return func(h *Handler) { h.replays = cache }
}

// NewHandler constructs a Handler backed by the given store.
func NewHandler(store AccountStore, l logger.Logger, opts ...HandlerOptFn) *Handler {
	if l == nil {
		l = logger.NewLogger()
	}

	h := &Handler{store: store, l: l}
	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Routes retrieves every admin route the Handler serves,
// for registering with router.AdminRoutes.
//
// When a replay cache is configured, the transition POSTs require an
// Idempotency-Key header so timed-out requests can be retried safely.
func (h *Handler) Routes() []router.Route {
	var post []middleware.Adapter
	if h.replays != nil {
		post = []middleware.Adapter{middleware.Idempotent(h.replays, nil)}
	}

	return []router.Route{
		{Path: "/accounts", Method: http.MethodGet, Handler: h.ListAccounts},
		{Path: "/accounts/{userID}", Method: http.MethodDelete, Handler: h.DeleteAccount},
		{Path: "/accounts/{userID}/activity", Method: http.MethodGet, Handler: h.ActivityLog},
		{Path: "/accounts/{userID}/approve", Method: http.MethodPost, Handler: h.Approve, Middlewares: post},
		{Path: "/accounts/{userID}/reject", Method: http.MethodPost, Handler: h.Reject, Middlewares: post},
		{Path: "/accounts/{userID}/hold", Method: http.MethodPost, Handler: h.Hold, Middlewares: post},
		{Path: "/accounts/{userID}/suspend", Method: http.MethodPost, Handler: h.Suspend, Middlewares: post},
		{Path: "/accounts/{userID}/activate", Method: http.MethodPost, Handler: h.Activate, Middlewares: post},
		{Path: "/accounts/{userID}/role", Method: http.MethodPut, Handler: h.ChangeRole},
	}
}
