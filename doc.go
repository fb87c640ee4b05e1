// Package taskauth is the credential and session lifecycle core of the
// taskhive task-tracking service. It registers accounts, verifies passwords,
// issues and validates JWT session tokens, throttles brute-force login
// attempts, and runs the single-use password-reset token workflow.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// taskauth is the public surface. It exposes [Engine], [Builder], [Config],
// value types (PublicUser, Identity, ResetValidation), and the collaborator
// interfaces [UserStore] and [Mailer]. Login throttling lives under
// internal/ and is never exported; hashing and token signing live in the
// password and jwt subpackages.
//
// # What this package must NOT do
//
//   - Place a plaintext password or password hash in any returned value,
//     audit event, or error message.
//   - Reveal through the reset-request path whether an email address has an
//     account.
//   - Hold a server-side session table: the signed token is the single
//     source of session truth until it expires.
package taskauth
