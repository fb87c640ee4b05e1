// Package jwt issues and verifies the signed bearer session tokens for
// taskauth.
//
// Tokens are HS256-signed and self-contained: user id, email, issued-at,
// and expiry. The server keeps no session table — possession of the signing
// secret plus the current time fully decide validity. There is no
// revocation; a compromised token stays valid until natural expiry, which
// is an accepted trade-off of the design.
package jwt
