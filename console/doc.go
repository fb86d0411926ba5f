// Package console runs one administrator session's live view of the
// account list.
//
// A Console reconciles pushed change-feed events with a periodic full
// refresh through two pure functions, ApplyEvent and ApplyRefresh, keeps a
// bounded notification Queue and a new-account Highlights set, and
// re-resolves routing for the viewing account after every change.
package console
