package session

import (
	"net/http"

	gorilla "github.com/gorilla/sessions"
)

// keys used internal to specific implementations of different interfaces.
const (
	sessionKey        = "lifeline-session-gorilla" // used by Service
	accountSessionKey = sessionKey + "-account"    // used by Session
)

// The Sessionable wraps methods for adding values to, deleting, and getting
// values from a session associated with an *http.Request and saving those to
// the session store.
type Sessionable interface {
	Delete(w http.ResponseWriter, r *http.Request) error
	Get(key string) any
	ResetExpiry(w http.ResponseWriter, r *http.Request) error
	Save(w http.ResponseWriter, r *http.Request) error
	Set(w http.ResponseWriter, r *http.Request, key string, val any) error
}

// The AccountSessionable wraps methods for adding, removing, and retrieving
// the authenticated account's userID from a session.
type AccountSessionable interface {
	DeregisterAccount(w http.ResponseWriter, r *http.Request) error
	RegisterAccount(w http.ResponseWriter, r *http.Request, userID string) error
	AccountID() (string, error)
}

// The LifelineSessionable composes session's major interfaces.
type LifelineSessionable interface {
	Sessionable
	AccountSessionable
}

// A Session provides all functionality for managing a web session.
//
// Its functionality is implemented by lightly wrapping a gorilla.Session.
type Session struct {
	s *gorilla.Session
}

// NewSession constructs a new Session as an implementation of LifelineSessionable
// from a *gorilla.Session.
//
// Typical usage is to pass in the value retrieved from a http.Request.Context.
func NewSession(g *gorilla.Session) LifelineSessionable { return Session{s: g} }

// Delete removes a session by making the MaxAge negative.
func (s Session) Delete(w http.ResponseWriter, r *http.Request) error {
	s.s.Options.MaxAge = -1
	return s.Save(w, r)
}

// DeregisterAccount removes the account from the session.
func (s Session) DeregisterAccount(w http.ResponseWriter, r *http.Request) error {
	delete(s.s.Values, accountSessionKey)
	return s.Save(w, r)
}

// Get retrieves a value from the session according to the key passed in.
func (s Session) Get(key string) any {
	return s.s.Values[key]
}

// RegisterAccount stores the account's userID in the session.
func (s Session) RegisterAccount(w http.ResponseWriter, r *http.Request, userID string) error {
	s.s.Values[accountSessionKey] = userID
	return s.Save(w, r)
}

// AccountID retrieves the authenticated account's userID from the session.
//
// ErrNoAccount returns when no account has been registered.
func (s Session) AccountID() (string, error) {
	userID, ok := s.s.Values[accountSessionKey].(string)
	if !ok || userID == "" {
		return "", ErrNoAccount
	}

	return userID, nil
}

// ResetExpiry resets the expiration of the session by saving it.
func (s Session) ResetExpiry(w http.ResponseWriter, r *http.Request) error {
	return s.Save(w, r)
}

// Save wraps gorilla.Session.Save, saving the session in the request.
func (s Session) Save(w http.ResponseWriter, r *http.Request) error { return s.s.Save(r, w) }

// Set stores a value according to the key passed in on the session.
func (s Session) Set(w http.ResponseWriter, r *http.Request, key string, val any) error {
	s.s.Values[key] = val
	return s.Save(w, r)
}
