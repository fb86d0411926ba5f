/*
The middleware package defines what a middleware is in lifeline and a set of basic middlewares.

The available middlewares are:
- CORS
- CurrentAccount
- ForceHTTPS
- Idempotent
- InjectIPAddress
- InjectSession
- LogRequest
- RateLimit
- RequestID
- RequireAdmin
- RequireAuthed

Due to the amount of configuration required, middleware does not provide a default middleware chain.
Instead, the following can be copy-pasted:

	vs := middleware.NewVisitors()
	adpts := []middleware.Adapter{
		middleware.RateLimit(vs),
		middleware.InjectIPAddress(),
		middleware.RequestID(lifeline.RequestIDKey),
		middleware.LogRequest(log),
		middleware.InjectSession(sessionStore, lifeline.SessionKey),
		middleware.CurrentAccount(accounts.ByUserID, lifeline.SessionKey, lifeline.CurrentAccountKey),
	}
*/
package middleware
