// Package api exposes the administrator account operations over JSON HTTP.
//
// Handlers are thin: they parse the request, hand off to an AccountStore,
// and map failures to status codes. Business-rule refusals come back 4xx,
// storage faults 500.
package api
