package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/http/session"
)

// AccountStorer defines how to retrieve an account by its userID in the
// context of middleware.
type AccountStorer func(ctx context.Context, userID string) (*lifeline.Account, error)

// CurrentAccount pulls the account out of the session stored in the
// *http.Request.Context and injects it under accountKey.
//
// Requests without a registered account pass through untouched; access
// control middlewares downstream decide whether that is acceptable.
// Accounts whose lifecycle state bars them from operating are refused with
// 403 and the destination screen their state resolves to, so every surface
// routes them the same way.
func CurrentAccount(storer AccountStorer, sessionKey, accountKey lifeline.Key) Adapter {
	if storer == nil || sessionKey == "" || accountKey == "" {
		return NoopAdapter
	}

	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := r.Context().Value(sessionKey).(session.LifelineSessionable)
			if !ok {
				respondDestination(w, http.StatusUnauthorized, lifeline.ResolveDestination(nil))
				return
			}

			userID, err := s.AccountID()
			if err != nil {
				// NOTE: no account in the session, request may be
				// accessing an unauthenticated endpoint.
				handler.ServeHTTP(w, r)
				return
			}

			acct, err := storer(r.Context(), userID)
			if err != nil {
				if err := s.Delete(w, r); err != nil {
					w.WriteHeader(http.StatusInternalServerError)
					return
				}

				respondDestination(w, http.StatusUnauthorized, lifeline.ResolveDestination(nil))
				return
			}

			if dest := lifeline.ResolveDestination(acct); !acct.CanOperate() && !acct.IsAdmin() {
				respondDestination(w, http.StatusForbidden, dest)
				return
			}

			if err := s.ResetExpiry(w, r); err != nil {
				s.Delete(w, r) // NOTE: ignore delete error
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			w.Header().Add("Cache-control", "no-store")
			w.Header().Add("Pragma", "no-cache")

			ctx := context.WithValue(r.Context(), accountKey, *acct)
			handler.ServeHTTP(w, r.Clone(ctx))
		})
	}
}

// RequireAuthed refuses requests lacking an account under key with 401.
func RequireAuthed(key lifeline.Key) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := r.Context().Value(key).(lifeline.Account); !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin refuses requests whose account under key is not an approved
// admin with 403.
func RequireAdmin(key lifeline.Key) Adapter {
	return func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acct, ok := r.Context().Value(key).(lifeline.Account)
			if !ok {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			if !acct.IsAdmin() || !acct.Approved() {
				w.WriteHeader(http.StatusForbidden)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// respondDestination refuses a request while telling the client which screen
// the refused account resolves to.
func respondDestination(w http.ResponseWriter, code int, dest lifeline.Destination) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"destination": dest.Path()})
}
