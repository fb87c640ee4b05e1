// Package password provides one-way credential hashing for taskauth.
//
// # Design
//
// Hashing uses bcrypt: salted, adaptive, with a single fixed work factor
// (the cost). Verification is constant-time with respect to the comparison
// outcome; the primitive provides this. A malformed stored hash never
// panics or errors out of Verify — it verifies as false.
//
// # What this package must NOT do
//
//   - Log, return, or retain the plaintext.
//   - Import taskauth or any sibling package.
package password
