package auth_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/require"

	"github.com/agencydesk/lifeline/auth"
)

const testKey = "0123456789abcdef"

func signedToken(t *testing.T, method jwt.SigningMethod, key any) string {
	t.Helper()

	claims := auth.AccountClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|me",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.Nil(t, err)

	return signed
}

func TestNewService(t *testing.T) {
	// Act
	_, err := auth.NewService("", "client", "secret")

	// Assert
	require.ErrorIs(t, err, auth.ErrNotValid)

	// Act
	svc, err := auth.NewService(testKey, "client", "secret")

	// Assert
	require.Nil(t, err)
	require.NotNil(t, svc)
}

func TestAuthenticateJWT(t *testing.T) {
	svc, err := auth.NewService(testKey, "client", "secret")
	require.Nil(t, err)

	t.Run("RoundTrip", func(t *testing.T) {
		// Arrange
		v := url.Values{"jwt": []string{signedToken(t, jwt.SigningMethodHS256, []byte(testKey))}}

		// Act
		claims, err := svc.AuthenticateJWT(v, &auth.AccountClaims{})

		// Assert
		require.Nil(t, err)
		require.Equal(t, "auth0|me", claims.(*auth.AccountClaims).UserID())
	})

	t.Run("MissingParam", func(t *testing.T) {
		// Act
		_, err := svc.AuthenticateJWT(url.Values{}, &auth.AccountClaims{})

		// Assert
		require.ErrorIs(t, err, auth.ErrNotValid)
	})

	t.Run("WrongKey", func(t *testing.T) {
		// Arrange
		v := url.Values{"jwt": []string{signedToken(t, jwt.SigningMethodHS256, []byte("another-secret!!"))}}

		// Act
		_, err := svc.AuthenticateJWT(v, &auth.AccountClaims{})

		// Assert
		require.ErrorIs(t, err, auth.ErrUnexpected)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		// Arrange
		claims := auth.AccountClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "auth0|me",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testKey))
		require.Nil(t, err)

		// Act
		_, err = svc.AuthenticateJWT(url.Values{"jwt": []string{signed}}, &auth.AccountClaims{})

		// Assert
		require.ErrorIs(t, err, auth.ErrUnexpected)
	})
}
