package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/lifecycle"
)

// ListAccounts responds with every account, newest registration first.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.store.ListAccounts(r.Context())
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"accounts": accts})
}

// ActivityLog responds with the audit trail for the account, newest entry first.
func (h *Handler) ActivityLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.store.ActivityLog(r.Context(), mux.Vars(r)["userID"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"activity": entries})
}

// Approve moves a pending account into approved, active service.
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	acct, err := h.store.Approve(r.Context(), h.actorID(r), mux.Vars(r)["userID"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"account": acct})
}

// Reject declines a pending account, recording the administrator's reason.
func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := h.decode(r, &body); err != nil {
		h.respondErr(w, r, err)
		return
	}

	acct, err := h.store.Reject(r.Context(), h.actorID(r), mux.Vars(r)["userID"], body.Reason)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"account": acct})
}

// Hold places an approved account on hold.
//
// The window comes either as a preset day count or as an explicit end
// timestamp, never both.
func (h *Handler) Hold(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HoldDays   int        `json:"holdDays"`
		HoldEndsAt *time.Time `json:"holdEndsAt"`
		Reason     string     `json:"reason"`
	}
	if err := h.decode(r, &body); err != nil {
		h.respondErr(w, r, err)
		return
	}

	window := lifecycle.HoldFor(body.HoldDays)
	if body.HoldEndsAt != nil {
		if body.HoldDays != 0 {
			h.respondErr(w, r, fmt.Errorf("%w: provide holdDays or holdEndsAt, not both", lifeline.ErrInvalidHoldWindow))
			return
		}

		window = lifecycle.HoldUntil(*body.HoldEndsAt)
	}

	acct, err := h.store.Hold(r.Context(), h.actorID(r), mux.Vars(r)["userID"], window, body.Reason)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"account": acct})
}

// Suspend takes an approved account out of service indefinitely.
func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := h.decode(r, &body); err != nil {
		h.respondErr(w, r, err)
		return
	}

	acct, err := h.store.Suspend(r.Context(), h.actorID(r), mux.Vars(r)["userID"], body.Reason)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"account": acct})
}

// Activate returns a held or suspended account to active service.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	acct, err := h.store.Activate(r.Context(), h.actorID(r), mux.Vars(r)["userID"])
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"account": acct})
}

// ChangeRole updates an account's role.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role lifeline.Role `json:"role"`
	}
	if err := h.decode(r, &body); err != nil {
		h.respondErr(w, r, err)
		return
	}

	acct, err := h.store.ChangeRole(r.Context(), h.actorID(r), mux.Vars(r)["userID"], body.Role)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusOK, map[string]any{"account": acct})
}

// DeleteAccount permanently removes an account and its audit trail.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := h.decode(r, &body); err != nil {
		h.respondErr(w, r, err)
		return
	}

	if err := h.store.Delete(r.Context(), h.actorID(r), mux.Vars(r)["userID"], body.Reason); err != nil {
		h.respondErr(w, r, err)
		return
	}

	h.respond(w, http.StatusNoContent, nil)
}

// actorID retrieves the acting administrator's userID from the request context.
func (h *Handler) actorID(r *http.Request) string {
	acct, ok := r.Context().Value(lifeline.CurrentAccountKey).(lifeline.Account)
	if !ok {
		return ""
	}

	return acct.UserID
}

// decode reads the request's JSON body into v.
func (h *Handler) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed request body: %s", lifeline.ErrNotValid, err)
	}

	return nil
}
