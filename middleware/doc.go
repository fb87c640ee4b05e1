// Package middleware adapts the taskauth account guard to net/http.
//
// Guard wraps a handler: it reads the Authorization header, runs
// [taskauth.Engine.Authenticate], and either rejects the request with the
// mapped status code (401 for missing/invalid/expired tokens, 423 for a
// blocked account) or attaches the authenticated identity to the request
// context for downstream handlers.
package middleware
