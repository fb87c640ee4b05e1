// Package stores ships the UserStore implementations bundled with taskauth.
//
// RedisStore keeps binary-encoded user records in Redis with two secondary
// indexes: a lowercased email key enforcing case-insensitive uniqueness and
// an opaque reset-token key for reset lookups. MemoryStore backs tests and
// examples with the same contract.
//
// Both implementations honor the [taskauth.UserStore] contract: lookup
// misses return [taskauth.ErrUserNotFound], uniqueness violations return
// [taskauth.ErrEmailTaken], and Update is last-write-wins per record.
package stores
