package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agencydesk/lifeline"
	"github.com/agencydesk/lifeline/logger"
)

// respond writes payload as the JSON body of a response with the given code.
// A nil payload writes no body and no Content-Type.
func (h *Handler) respond(w http.ResponseWriter, code int, payload any) {
	if payload == nil {
		w.WriteHeader(code)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.l.Error("failed encoding response body", &logger.LogContext{Error: err})
	}
}

// respondErr maps err to a status code and writes it as a JSON error body.
//
// Business-rule failures are the client's to fix and come back as 4xx;
// anything unrecognized is a storage or network fault the client may retry,
// so it comes back as 500.
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var code int
	switch {
	case errors.Is(err, lifeline.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, lifeline.ErrLastAdmin), errors.Is(err, lifeline.ErrExists):
		code = http.StatusConflict
	case errors.Is(err, lifeline.ErrInvalidTransition),
		errors.Is(err, lifeline.ErrMissingReason),
		errors.Is(err, lifeline.ErrInvalidHoldWindow),
		errors.Is(err, lifeline.ErrNotValid),
		errors.Is(err, lifeline.ErrMissingData):
		code = http.StatusUnprocessableEntity
	default:
		code = http.StatusInternalServerError
		h.l.Error(err.Error(), &logger.LogContext{Request: r})
	}

	h.respond(w, code, map[string]string{"error": err.Error()})
}
