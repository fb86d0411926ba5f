package lifeline

type Key string

const (
	// CurrentAccountKey stashes the Account for a session.
	CurrentAccountKey Key = "CurrentAccountKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled by lifeline.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the session associated with an HTTP request.
	SessionKey Key = "SessionKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "lifeline context key: " + string(k)
}
