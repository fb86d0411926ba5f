package auth

import (
	"context"
	"net/url"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/oauth2"
	goauth2 "google.golang.org/api/oauth2/v2"
)

// An IdentityService verifies what the external identity provider hands the
// console and surfaces the stable subject behind it.
type IdentityService interface {
	AuthenticateJWT(v url.Values, claims jwt.Claims) (jwt.Claims, error)
	FetchUser(ctx context.Context, token *oauth2.Token) (*goauth2.Userinfo, error)
}

// AccountClaims are the app-token claims lifeline issues its own sessions
// against. Subject carries the identity provider's stable userID.
type AccountClaims struct {
	jwt.RegisteredClaims
}

// UserID retrieves the stable subject the claims were issued for.
func (c AccountClaims) UserID() string { return c.Subject }
