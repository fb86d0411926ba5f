/*
Package auth verifies what the external identity provider hands the console.

Credential issuance itself lives with the provider; this package only parses
and validates HS256 app tokens and fetches Google userinfo from an oauth
token, in both cases to obtain the stable subject accounts are keyed by.
*/
package auth
